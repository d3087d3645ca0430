package spritecut

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Composite cuts every region out of the source image and renders it onto
// its own canvas: one shared size for the whole batch, aspect-preserving
// scale-to-fit under a custom output size, content centered, with optional
// polygon clipping and background keying on the finished canvas. Frames are
// index-aligned with regions, including degenerate ones, which keep their ID
// and stay fully transparent. All validation happens before any frame is
// rendered, so the call either returns a frame for every region or fails as
// a whole.
func Composite(img *image.NRGBA, regions []Region, opt CompositeOptions) ([]Frame, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	finalW, finalH, err := outputSize(regions, opt.Output)
	if err != nil {
		return nil, err
	}

	var bg RGB
	if opt.RemoveBackground {
		// Resolved once per call against the source image, not per frame.
		bg = ResolveBackground(img, opt.Background)
	}

	frames := make([]Frame, 0, len(regions))
	for i, reg := range regions {
		canvas := renderRegion(img, reg, finalW, finalH, opt.Output.Policy)
		if opt.RemoveBackground {
			ChromaKey(canvas, bg, opt.Tolerance)
		}
		frames = append(frames, Frame{ID: i, Image: canvas, Source: reg.Rect})
	}
	return frames, nil
}

// SliceGrid cuts the image into a rows x cols partition and composites every
// cell as its own frame in row-major order. Cell size is floor(width/cols) x
// floor(height/rows); when either floors to zero the result is empty, not an
// error. Cells carry no polygon path.
func SliceGrid(img *image.NRGBA, rows, cols int, opt CompositeOptions) ([]Frame, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	if rows < 1 || cols < 1 {
		return []Frame{}, nil
	}
	b := img.Bounds()
	cellW := b.Dx() / cols
	cellH := b.Dy() / rows
	if cellW == 0 || cellH == 0 {
		return []Frame{}, nil
	}
	regions := make([]Region, 0, rows*cols)
	for r := range rows {
		for c := range cols {
			x0 := b.Min.X + c*cellW
			y0 := b.Min.Y + r*cellH
			regions = append(regions, Region{Rect: image.Rect(x0, y0, x0+cellW, y0+cellH)})
		}
	}
	return Composite(img, regions, opt)
}

func outputSize(regions []Region, size OutputSize) (int, int, error) {
	if size.Policy == SizeCustom {
		if size.Width < 1 || size.Height < 1 {
			return 0, 0, fmt.Errorf("%w: got %dx%d", ErrInvalidOutputSize, size.Width, size.Height)
		}
		return size.Width, size.Height, nil
	}
	w, h := 1, 1
	for _, reg := range regions {
		w = max(w, reg.Rect.Dx())
		h = max(h, reg.Rect.Dy())
	}
	return w, h, nil
}

func renderRegion(img *image.NRGBA, reg Region, finalW, finalH int, policy SizePolicy) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, finalW, finalH))
	srcRect := reg.Rect.Intersect(img.Bounds())
	rw, rh := srcRect.Dx(), srcRect.Dy()
	if rw <= 0 || rh <= 0 {
		// Degenerate region: keep the slot, leave the canvas transparent.
		return canvas
	}

	scale := 1.0
	if policy == SizeCustom {
		scale = math.Min(float64(finalW)/float64(rw), float64(finalH)/float64(rh))
	}
	drawW := max(int(math.Round(float64(rw)*scale)), 1)
	drawH := max(int(math.Round(float64(rh)*scale)), 1)
	destX := (finalW - drawW) / 2
	destY := (finalH - drawH) / 2
	destRect := image.Rect(destX, destY, destX+drawW, destY+drawH)

	// Scratch surface: resample the source cut first, then lay it onto the
	// canvas through the optional polygon mask. Identity scale and the
	// unmasked copy move raw rows, not draw ops, so unscaled pixels survive
	// bit-exact, including the RGB of fully transparent ones.
	scratch := image.NewNRGBA(image.Rect(0, 0, drawW, drawH))
	if drawW == rw && drawH == rh {
		for y := range rh {
			srcOff := img.PixOffset(srcRect.Min.X, srcRect.Min.Y+y)
			copy(scratch.Pix[y*scratch.Stride:y*scratch.Stride+rw*4], img.Pix[srcOff:srcOff+rw*4])
		}
	} else {
		xdraw.CatmullRom.Scale(scratch, scratch.Bounds(), img, srcRect, xdraw.Src, nil)
	}

	if len(reg.Path) >= 3 {
		mask := rasterizePath(reg.Path, srcRect.Min, scale, destX, destY, finalW, finalH)
		draw.DrawMask(canvas, destRect, scratch, image.Point{}, mask, destRect.Min, draw.Over)
	} else {
		for y := range drawH {
			dstOff := canvas.PixOffset(destX, destY+y)
			copy(canvas.Pix[dstOff:dstOff+drawW*4], scratch.Pix[y*scratch.Stride:y*scratch.Stride+drawW*4])
		}
	}
	return canvas
}

// rasterizePath renders the region polygon, mapped into canvas space, as an
// alpha clip mask: localP = (p - rect origin) * scale + dest offset. The
// rasterizer accumulates signed winding, so self-intersecting free-hand
// paths fill by the nonzero rule, with antialiased edges. The canvas starts
// fully transparent, so everything outside the polygon stays transparent.
func rasterizePath(path []image.Point, origin image.Point, scale float64, destX, destY, w, h int) *image.Alpha {
	r := vector.NewRasterizer(w, h)
	r.MoveTo(
		float32(float64(path[0].X-origin.X)*scale+float64(destX)),
		float32(float64(path[0].Y-origin.Y)*scale+float64(destY)),
	)
	for _, p := range path[1:] {
		r.LineTo(
			float32(float64(p.X-origin.X)*scale+float64(destX)),
			float32(float64(p.Y-origin.Y)*scale+float64(destY)),
		)
	}
	r.ClosePath()
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}
