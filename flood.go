package spritecut

import (
	"image"
	"math/bits"
)

// SelectionMask is a flat bitset covering every pixel of one source image.
// A mask is only meaningful against the image it was computed from; replacing
// or resizing that image invalidates the mask, and it is the caller's job to
// discard it then.
type SelectionMask struct {
	W, H int
	bits []uint64
}

func newSelectionMask(w, h int) *SelectionMask {
	return &SelectionMask{
		W:    w,
		H:    h,
		bits: make([]uint64, (w*h+63)/64),
	}
}

func (m *SelectionMask) set(i int) {
	m.bits[i>>6] |= 1 << (i & 63)
}

func (m *SelectionMask) get(i int) bool {
	return m.bits[i>>6]&(1<<(i&63)) != 0
}

// Contains reports whether pixel (x, y) is part of the selection. Coordinates
// outside the mask are never contained.
func (m *SelectionMask) Contains(x, y int) bool {
	if x < 0 || x >= m.W || y < 0 || y >= m.H {
		return false
	}
	return m.get(y*m.W + x)
}

// Count returns the number of selected pixels.
func (m *SelectionMask) Count() int {
	n := 0
	for _, word := range m.bits {
		n += bits.OnesCount64(word)
	}
	return n
}

// FloodFill grows a selection from the seed pixel across 4-connected
// neighbors whose alpha is nonzero and whose Manhattan RGB distance to the
// seed pixel's color stays within tolerance (clamped to [0, MaxTolerance]).
// Seed coordinates are truncated to integers; an out-of-bounds seed or a
// fully transparent seed returns nil. The returned mask always covers the
// whole image and is complete, never partial. The traversal uses an explicit
// work list, so stack depth stays bounded on large images, and the result is
// independent of traversal order.
func FloodFill(img *image.NRGBA, x, y float64, tolerance int) *SelectionMask {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	sx, sy := int(x), int(y)
	if sx < 0 || sx >= w || sy < 0 || sy >= h {
		return nil
	}
	seedOff := img.PixOffset(b.Min.X+sx, b.Min.Y+sy)
	if img.Pix[seedOff+3] == 0 {
		return nil
	}
	tol := clampTolerance(tolerance)
	seed := RGB{R: img.Pix[seedOff], G: img.Pix[seedOff+1], B: img.Pix[seedOff+2]}

	dx4 := []int{-1, 0, 1, 0}
	dy4 := []int{0, -1, 0, 1}
	mask := newSelectionMask(w, h)
	mask.set(sy*w + sx)
	stack := make([]int, 1, 256)
	stack[0] = sy*w + sx

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cx := cur % w
		cy := cur / w
		for k := range 4 {
			nx, ny := cx+dx4[k], cy+dy4[k]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			nIdx := ny*w + nx
			if mask.get(nIdx) {
				continue
			}
			off := img.PixOffset(b.Min.X+nx, b.Min.Y+ny)
			if img.Pix[off+3] == 0 {
				continue
			}
			if manhattanRGB(img.Pix[off], img.Pix[off+1], img.Pix[off+2], seed) > tol {
				continue
			}
			mask.set(nIdx)
			stack = append(stack, nIdx)
		}
	}
	return mask
}
