package spritecut

import (
	"image"
	"slices"
)

// Detect finds connected opaque regions of the image and returns their
// bounding rectangles in reading order: ascending by y, with regions whose
// top edges sit within opt.RowTolerance of each other treated as one row and
// ordered by x. Pixels belong to a region iff their alpha is strictly above
// opt.AlphaThreshold; regions are maximal 4-connected components of such
// pixels. A single opaque pixel yields a 1x1 region; an image with no pixel
// above the threshold yields an empty slice. The scan order is fixed, so the
// result is deterministic.
func Detect(img *image.NRGBA, opt DetectOptions) []Region {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	dx4 := []int{-1, 0, 1, 0}
	dy4 := []int{0, -1, 0, 1}
	visited := make([]bool, w*h)
	stack := make([]int, 0, 256)
	var regions []Region

	for y := range h {
		for x := range w {
			start := y*w + x
			if visited[start] {
				continue
			}
			if img.Pix[img.PixOffset(b.Min.X+x, b.Min.Y+y)+3] <= opt.AlphaThreshold {
				continue
			}

			visited[start] = true
			stack = append(stack[:0], start)
			minX, minY, maxX, maxY := x, y, x, y
			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				cx := cur % w
				cy := cur / w
				minX = min(minX, cx)
				maxX = max(maxX, cx)
				minY = min(minY, cy)
				maxY = max(maxY, cy)
				for k := range 4 {
					nx, ny := cx+dx4[k], cy+dy4[k]
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					nIdx := ny*w + nx
					if visited[nIdx] {
						continue
					}
					if img.Pix[img.PixOffset(b.Min.X+nx, b.Min.Y+ny)+3] <= opt.AlphaThreshold {
						continue
					}
					visited[nIdx] = true
					stack = append(stack, nIdx)
				}
			}

			regions = append(regions, Region{
				Rect: image.Rect(minX, minY, maxX+1, maxY+1).Add(b.Min),
			})
		}
	}

	// Stable sort keeps the scan order as the final tie-break, so equal
	// positions stay reproducible.
	slices.SortStableFunc(regions, func(a, c Region) int {
		dy := a.Rect.Min.Y - c.Rect.Min.Y
		if absInt(dy) <= opt.RowTolerance {
			return a.Rect.Min.X - c.Rect.Min.X
		}
		return dy
	})
	return regions
}
