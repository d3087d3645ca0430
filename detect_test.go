package spritecut

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectSingleBlob(t *testing.T) {
	img := makeSheet(16, 16)
	blob := image.Rect(2, 3, 7, 9)
	fillRect(img, blob, red)

	regions := Detect(img, DefaultDetectOptions())
	require.Len(t, regions, 1)
	require.Equal(t, blob, regions[0].Rect)
	require.Nil(t, regions[0].Path)
}

func TestDetectSinglePixel(t *testing.T) {
	img := makeSheet(8, 8)
	setPixel(img, 5, 4, white)

	regions := Detect(img, DefaultDetectOptions())
	require.Len(t, regions, 1)
	require.Equal(t, image.Rect(5, 4, 6, 5), regions[0].Rect)
}

func TestDetectAllBelowThreshold(t *testing.T) {
	img := makeSheet(8, 8)
	// Alpha exactly at the threshold is not opaque: the predicate is strict.
	fillRect(img, img.Bounds(), color.NRGBA{R: 10, G: 10, B: 10, A: 10})

	regions := Detect(img, DefaultDetectOptions())
	require.Empty(t, regions)
}

func TestDetectThresholdIsStrict(t *testing.T) {
	img := makeSheet(4, 4)
	setPixel(img, 0, 0, color.NRGBA{A: 10})
	setPixel(img, 2, 2, color.NRGBA{A: 11})

	regions := Detect(img, DefaultDetectOptions())
	require.Len(t, regions, 1)
	require.Equal(t, image.Rect(2, 2, 3, 3), regions[0].Rect)
}

func TestDetectDiagonalNotConnected(t *testing.T) {
	img := makeSheet(4, 4)
	setPixel(img, 1, 1, white)
	setPixel(img, 2, 2, white)

	regions := Detect(img, DefaultDetectOptions())
	require.Len(t, regions, 2)
}

func TestDetectReadingOrderSameRow(t *testing.T) {
	img := makeSheet(32, 32)
	// Same row under tolerance: tops differ by 6 <= 10, so x decides.
	fillRect(img, image.Rect(20, 2, 24, 6), red)
	fillRect(img, image.Rect(1, 8, 5, 12), green)

	regions := Detect(img, DefaultDetectOptions())
	require.Len(t, regions, 2)
	require.Equal(t, 1, regions[0].Rect.Min.X)
	require.Equal(t, 20, regions[1].Rect.Min.X)
}

func TestDetectReadingOrderDifferentRows(t *testing.T) {
	img := makeSheet(32, 32)
	// Tops differ by 20 > 10: y decides, regardless of x.
	fillRect(img, image.Rect(20, 0, 24, 4), red)
	fillRect(img, image.Rect(1, 20, 5, 24), green)

	regions := Detect(img, DefaultDetectOptions())
	require.Len(t, regions, 2)
	require.Equal(t, 0, regions[0].Rect.Min.Y)
	require.Equal(t, 20, regions[1].Rect.Min.Y)
}

func TestDetectConcaveBlobIsOneRegion(t *testing.T) {
	img := makeSheet(16, 16)
	// U-shape: two columns joined at the bottom.
	fillRect(img, image.Rect(2, 2, 4, 10), white)
	fillRect(img, image.Rect(8, 2, 10, 10), white)
	fillRect(img, image.Rect(2, 10, 10, 12), white)

	regions := Detect(img, DefaultDetectOptions())
	require.Len(t, regions, 1)
	require.Equal(t, image.Rect(2, 2, 10, 12), regions[0].Rect)
}

func TestDetectNilImage(t *testing.T) {
	require.Nil(t, Detect(nil, DefaultDetectOptions()))
}
