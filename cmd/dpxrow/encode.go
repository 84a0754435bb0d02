package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepteams/dpx"
	"github.com/deepteams/dpx/dpxfile"
	"github.com/deepteams/dpx/internal/descriptor"
	"github.com/deepteams/dpx/internal/rowcodec"
)

func encodeCommand() *cobra.Command {
	var width, height, components, bitSize int
	var packingName, encodingName string

	cmd := &cobra.Command{
		Use:   "encode <samples.raw> <out.dpx>",
		Short: "Pack a flat big-endian int32 sample dump into a minimal single-element DPX file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(args[0], args[1], width, height, components, bitSize, packingName, encodingName)
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "pixels per line (required)")
	cmd.Flags().IntVar(&height, "height", 0, "lines per image element (required)")
	cmd.Flags().IntVar(&components, "components", 3, "components per pixel, 1-8")
	cmd.Flags().IntVar(&bitSize, "bitsize", 8, "bits per sample: 1, 8, 10, 12, or 16")
	cmd.Flags().StringVar(&packingName, "packing", "packed", "packing method: packed, methoda, or methodb")
	cmd.Flags().StringVar(&encodingName, "encoding", "none", "row encoding: none or rle")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")
	return cmd
}

func parsePacking(s string) (rowcodec.Packing, error) {
	switch s {
	case "packed":
		return rowcodec.Packed, nil
	case "methoda":
		return rowcodec.MethodA, nil
	case "methodb":
		return rowcodec.MethodB, nil
	}
	return 0, fmt.Errorf("encode: unknown packing %q", s)
}

func parseEncoding(s string) (rowcodec.Encoding, error) {
	switch s {
	case "none":
		return rowcodec.NoEncoding, nil
	case "rle":
		return rowcodec.RLE, nil
	}
	return 0, fmt.Errorf("encode: unknown encoding %q", s)
}

// descriptorForComponents picks a generic descriptor matching n, since a
// raw sample dump carries no component-label information of its own.
func descriptorForComponents(n int) descriptor.Descriptor {
	switch n {
	case 1:
		return descriptor.DescR
	case 2:
		return descriptor.DescGeneric2
	case 3:
		return descriptor.DescGeneric3
	case 4:
		return descriptor.DescGeneric4
	case 5:
		return descriptor.DescGeneric5
	case 6:
		return descriptor.DescGeneric6
	case 7:
		return descriptor.DescGeneric7
	case 8:
		return descriptor.DescGeneric8
	}
	return descriptor.DescUser
}

func activeRLEIndex(enc rowcodec.Encoding) int {
	if enc == rowcodec.RLE {
		return 0
	}
	return -1
}

func runEncode(inPath, outPath string, width, height, components, bitSize int, packingName, encodingName string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("encode: width and height must be positive")
	}
	if components < 1 || components > 8 {
		return fmt.Errorf("encode: components must be between 1 and 8")
	}
	packing, err := parsePacking(packingName)
	if err != nil {
		return err
	}
	encoding, err := parseEncoding(encodingName)
	if err != nil {
		return err
	}

	in, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	if len(in)%4 != 0 {
		return fmt.Errorf("encode: sample file length %d is not a multiple of 4 bytes", len(in))
	}
	samples := make([]int32, len(in)/4)
	for i := range samples {
		samples[i] = int32(binary.BigEndian.Uint32(in[i*4:]))
	}
	want := width * height * components
	if len(samples) != want {
		return fmt.Errorf("encode: sample file has %d samples, expected %dx%dx%d=%d", len(samples), width, height, components, want)
	}

	header := &dpx.FileHeader{
		Magic:           "SDPX",
		PixelsPerLine:   uint32(width),
		LinesPerElement: uint32(height),
		NumElements:     1,
	}
	header.ImageElements[0] = dpx.ImageElementHeader{
		Descriptor: descriptorForComponents(components),
		BitSize:    bitSize,
		Packing:    packing,
		Encoding:   encoding,
		DataOffset: dpxfile.HeaderSize(),
	}

	var headerBuf bytes.Buffer
	if err := dpxfile.WriteHeader(&headerBuf, header); err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	fm := dpxfile.NewMemFileMap(1, activeRLEIndex(encoding))
	stream := dpxfile.NewMemStream(nil)

	var e dpx.Element
	if err := e.Initialize(header, 0, stream, fm); err != nil {
		return err
	}
	if err := e.OpenForWriting(false); err != nil {
		return err
	}
	e.LockHeader()

	for r := 0; r < height; r++ {
		off := r * width * components
		if err := e.WriteRowInt(uint32(r), samples[off:off+width*components]); err != nil {
			return fmt.Errorf("encode: row %d: %w", r, err)
		}
	}

	dataOffset := header.ImageElements[0].DataOffset
	out := append([]byte(nil), headerBuf.Bytes()...)
	out = append(out, stream.Bytes()[dataOffset:]...)
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return err
	}

	fmt.Printf("Encoded %dx%d, %d component(s), %d-bit -> %s (%d bytes)\n", width, height, components, bitSize, outPath, len(out))
	return nil
}
