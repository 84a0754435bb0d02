package dpxfile_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepteams/dpx"
	"github.com/deepteams/dpx/dpxfile"
	"github.com/deepteams/dpx/internal/descriptor"
	"github.com/deepteams/dpx/internal/rowcodec"
)

func TestHeaderRoundTripDatumMappingDirectionAndChromaSubsampling(t *testing.T) {
	h := &dpx.FileHeader{
		Magic:                    "SDPX",
		PixelsPerLine:            4,
		LinesPerElement:          2,
		NumElements:              1,
		DatumMappingDirectionR2L: true,
		ChromaSubsampling:        dpx.ColorDifferenceSiting(3),
	}
	h.ImageElements[0] = dpx.ImageElementHeader{
		Descriptor: descriptor.DescRGB,
		BitSize:    8,
		Packing:    rowcodec.Packed,
		Encoding:   rowcodec.NoEncoding,
		DataOffset: dpxfile.HeaderSize(),
	}

	var buf bytes.Buffer
	require.NoError(t, dpxfile.WriteHeader(&buf, h))

	reparsed, err := dpxfile.ReadHeader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.True(t, reparsed.DatumMappingDirectionR2L)
	require.Equal(t, dpx.ColorDifferenceSiting(3), reparsed.ChromaSubsampling)
}

func TestHeaderRoundTripDatumMappingDirectionLeftToRight(t *testing.T) {
	h := &dpx.FileHeader{
		Magic:                    "SDPX",
		PixelsPerLine:            4,
		LinesPerElement:          2,
		NumElements:              1,
		DatumMappingDirectionR2L: false,
	}
	h.ImageElements[0] = dpx.ImageElementHeader{
		Descriptor: descriptor.DescRGB,
		BitSize:    8,
		Packing:    rowcodec.Packed,
		Encoding:   rowcodec.NoEncoding,
		DataOffset: dpxfile.HeaderSize(),
	}

	var buf bytes.Buffer
	require.NoError(t, dpxfile.WriteHeader(&buf, h))

	reparsed, err := dpxfile.ReadHeader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.False(t, reparsed.DatumMappingDirectionR2L)
}
