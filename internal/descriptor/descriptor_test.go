package descriptor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToDatumListKnownDescriptors(t *testing.T) {
	cases := []struct {
		d    Descriptor
		want []Label
	}{
		{DescR, []Label{R}},
		{DescCbCr, []Label{Cb, Cr}},
		{DescRGB, []Label{R, G, B}},
		{DescRGBA, []Label{R, G, B, A}},
		{DescABGR, []Label{A, B, G, R}},
		{DescCbYCrY, []Label{Cb, Y, Cr, Y2}},
		{DescGeneric4, []Label{Unspec, Unspec2, Unspec3, Unspec4}},
	}
	for _, c := range cases {
		require.Equal(t, c.want, ToDatumList(c.d))
	}
}

func TestToDatumListUnknownCollapsesToUnspec(t *testing.T) {
	require.Equal(t, []Label{Unspec}, ToDatumList(Descriptor(0x42)))
	require.Equal(t, []Label{Unspec}, ToDatumList(DescUndefined))
	require.Equal(t, []Label{Unspec}, ToDatumList(DescUser))
}

func TestToDescriptorRoundTripsForUnambiguousLists(t *testing.T) {
	cases := []struct {
		labels []Label
		want   Descriptor
	}{
		{[]Label{R}, DescR},
		{[]Label{Cb, Cr}, DescCbCr},
		{[]Label{B, G, R}, DescBGR},
		{[]Label{R, G, B}, DescRGB},
		{[]Label{Cb, Y, Cr}, DescCbYCr},
	}
	for _, c := range cases {
		require.Equal(t, c.want, ToDescriptor(c.labels))
	}
}

func TestToDescriptorDuplicateMappingQuirk(t *testing.T) {
	// Both four-component orderings resolve to DescARGB, reproducing the
	// reference's non-strict-inverse behavior for four-component lists.
	require.Equal(t, DescARGB, ToDescriptor([]Label{A, R, G, B}))
	require.Equal(t, DescARGB, ToDescriptor([]Label{A, B, G, R}))
}

func TestToDescriptorUnmatchedReturnsNone(t *testing.T) {
	require.Equal(t, DescNone, ToDescriptor(nil))
	require.Equal(t, DescNone, ToDescriptor([]Label{Z, R}))
}

func TestNumComponents(t *testing.T) {
	require.Equal(t, 1, NumComponents(DescR))
	require.Equal(t, 2, NumComponents(DescCbCr))
	require.Equal(t, 4, NumComponents(DescRGBA))
	require.Equal(t, 6, NumComponents(DescCbYACrYA))
}

func TestSubsamplingClassification(t *testing.T) {
	require.True(t, IsHSubsampled(DescCbCr))
	require.True(t, IsVSubsampled(DescCb))
	require.False(t, IsVSubsampled(DescCbCr))
	require.False(t, IsHSubsampled(DescRGB))
}

func TestLabelStringNames(t *testing.T) {
	require.Equal(t, "R", R.String())
	require.Equal(t, "Unspec8", Unspec8.String())
	require.Equal(t, "Unrecognized", Label(999).String())
}
