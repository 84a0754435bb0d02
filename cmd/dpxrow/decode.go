package main

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepteams/dpx"
	"github.com/deepteams/dpx/dpxfile"
	"github.com/deepteams/dpx/internal/pool"
)

func decodeCommand() *cobra.Command {
	var element int
	cmd := &cobra.Command{
		Use:   "decode <file.dpx> <out.raw>",
		Short: "Decode one image element into a flat big-endian int32 sample dump",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(args[0], args[1], element)
		},
	}
	cmd.Flags().IntVar(&element, "element", 0, "image element index to decode")
	return cmd
}

func runDecode(path, outPath string, elementIndex int) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	header, err := dpxfile.ReadHeader(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if elementIndex < 0 || elementIndex >= header.NumElements {
		return fmt.Errorf("decode: element index %d out of range (file has %d)", elementIndex, header.NumElements)
	}

	stream := dpxfile.NewMemStream(raw)
	fm := dpxfile.NewMemFileMap(header.NumElements, -1)

	var e dpx.Element
	if err := e.Initialize(header, elementIndex, stream, fm); err != nil {
		return err
	}
	if err := e.OpenForReading(false); err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	bw := bufio.NewWriter(out)

	width := e.GetWidth()
	comps := e.GetNumberOfComponents()
	row := pool.GetInt32(int(width) * comps)
	for r := uint32(0); r < e.GetHeight(); r++ {
		if err := e.ReadRowInt(r, row); err != nil {
			return fmt.Errorf("decode: row %d: %w", r, err)
		}
		for _, v := range row {
			if err := binary.Write(bw, binary.BigEndian, v); err != nil {
				return err
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	fmt.Printf("Decoded element %d: %dx%d, %d component(s) -> %s\n", elementIndex, width, e.GetHeight(), comps, outPath)
	return nil
}
