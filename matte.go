package spritecut

import (
	"fmt"
	"image"
)

// ApplyMask returns a copy of img with alpha zeroed wherever the mask is set.
// RGB channels pass through untouched, and the input image is never modified.
// The mask must cover the image exactly; a size mismatch is an error, never a
// silent partial application. Applying the same mask twice gives the same
// result as applying it once.
func ApplyMask(img *image.NRGBA, mask *SelectionMask) (*image.NRGBA, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if mask == nil || mask.W != w || mask.H != h {
		mw, mh := -1, -1
		if mask != nil {
			mw, mh = mask.W, mask.H
		}
		return nil, fmt.Errorf("%w: image %dx%d, mask %dx%d", ErrDimensionMismatch, w, h, mw, mh)
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		srcOff := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out.Pix[y*out.Stride:y*out.Stride+w*4], img.Pix[srcOff:srcOff+w*4])
		for x := range w {
			if mask.get(y*w + x) {
				out.Pix[y*out.Stride+x*4+3] = 0
			}
		}
	}
	return out, nil
}

// ChromaKey zeroes the alpha of every pixel whose Manhattan RGB distance to
// the key color is within tolerance. It works in place. Pixels that are
// already fully transparent are skipped, so repeated keying is idempotent and
// the stale RGB of previously removed pixels is never reconsidered.
func ChromaKey(img *image.NRGBA, key RGB, tolerance int) {
	if img == nil {
		return
	}
	tol := clampTolerance(tolerance)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[off+3] != 0 &&
				manhattanRGB(img.Pix[off], img.Pix[off+1], img.Pix[off+2], key) <= tol {
				img.Pix[off+3] = 0
			}
			off += 4
		}
	}
}

// ResolveBackground returns the explicit key when one is given, otherwise the
// color of the top-left pixel of the (unmodified) source image. Sheets whose
// background does not reach the top-left corner should pass an explicit key;
// utils.EstimateBackground gives a more robust default.
func ResolveBackground(img *image.NRGBA, explicit *RGB) RGB {
	if explicit != nil {
		return *explicit
	}
	if img == nil {
		return RGB{}
	}
	b := img.Bounds()
	if b.Empty() {
		return RGB{}
	}
	off := img.PixOffset(b.Min.X, b.Min.Y)
	return RGB{R: img.Pix[off], G: img.Pix[off+1], B: img.Pix[off+2]}
}
