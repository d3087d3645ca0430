package spritecut

import (
	"image"
	"image/color"
)

// makeSheet returns a fully transparent NRGBA canvas.
func makeSheet(w, h int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, w, h))
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func setPixel(img *image.NRGBA, x, y int, c color.NRGBA) {
	img.SetNRGBA(x, y, c)
}

func opaqueCount(img *image.NRGBA) int {
	b := img.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y).A > 0 {
				n++
			}
		}
	}
	return n
}

var (
	red   = color.NRGBA{R: 200, G: 30, B: 30, A: 255}
	green = color.NRGBA{R: 30, G: 200, B: 30, A: 255}
	blue  = color.NRGBA{R: 30, G: 30, B: 200, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)
