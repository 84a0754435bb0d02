package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepteams/dpx/dpxfile"
)

func inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.dpx>",
		Short: "Print the file header and per-element summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0])
		},
	}
}

func runInspect(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h, err := dpxfile.ReadHeader(f)
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}

	fmt.Printf("Magic:            %s\n", h.Magic)
	fmt.Printf("Pixels per line:  %d\n", h.PixelsPerLine)
	fmt.Printf("Lines per image:  %d\n", h.LinesPerElement)
	fmt.Printf("Image elements:   %d\n", h.NumElements)
	for i := 0; i < h.NumElements; i++ {
		ie := h.ImageElements[i]
		fmt.Printf("  [%d] descriptor=%d bitSize=%d packing=%d encoding=%d dataOffset=%d\n",
			i, ie.Descriptor, ie.BitSize, ie.Packing, ie.Encoding, ie.DataOffset)
	}
	return nil
}
