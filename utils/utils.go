// Package utils carries image I/O and background-color helpers around the
// core spritecut pipeline: decoding and saving frames, estimating the sheet
// background color, and rendering preview contact sheets.
package utils

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/stat"

	"github.com/setanarut/spritecut"
)

// ReadImage decodes the image at path. Decode errors surface verbatim.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// ToNRGBA copies any image.Image into an *image.NRGBA with bounds starting
// at (0,0), the pixel format the core pipeline works on.
func ToNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func SaveImage(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// SaveFrames writes every frame as dir/frame_<id>.png. PNG keeps the frame
// pixels lossless.
func SaveFrames(frames []spritecut.Frame, dir string) error {
	for _, fr := range frames {
		name := fmt.Sprintf("%s/frame_%02d.png", dir, fr.ID)
		if err := SaveImage(fr.Image, name); err != nil {
			return err
		}
	}
	return nil
}

// EstimateBackground guesses the sheet background color from the border
// pixels. Colors are quantized to a coarse grid, the most common bin wins
// (mode), and the winner is refined to the average of its member pixels.
// More robust than sampling a single corner on sheets where a sprite touches
// the edge. inset moves the sampled ring that many pixels inward; 0 samples
// the outermost ring.
func EstimateBackground(img *image.NRGBA, inset int) spritecut.RGB {
	samples := borderPixels(img, inset)
	if len(samples) == 0 {
		return spritecut.RGB{}
	}

	// 4 bits per channel is coarse enough to absorb compression noise while
	// still separating backdrop tones from sprite edges.
	bins := make([]float64, len(samples))
	for i, c := range samples {
		bins[i] = float64(int(c.R>>4)<<8 | int(c.G>>4)<<4 | int(c.B>>4))
	}
	slices.Sort(bins)
	mode, _ := stat.Mode(bins, nil)
	win := int(mode)

	var sumR, sumG, sumB, n int
	for _, c := range samples {
		if int(c.R>>4)<<8|int(c.G>>4)<<4|int(c.B>>4) == win {
			sumR += int(c.R)
			sumG += int(c.G)
			sumB += int(c.B)
			n++
		}
	}
	if n == 0 {
		return spritecut.RGB{}
	}
	return spritecut.RGB{
		R: uint8(sumR / n),
		G: uint8(sumG / n),
		B: uint8(sumB / n),
	}
}

// BackgroundCandidates clusters the border pixels with k-means and returns up
// to k candidate background colors, most common first. Candidates closer than
// a small Lab distance are merged so near-duplicates do not crowd out real
// alternatives.
func BackgroundCandidates(img *image.NRGBA, k int) []spritecut.RGB {
	if k <= 0 {
		return nil
	}
	samples := borderPixels(img, 0)
	if len(samples) == 0 {
		return nil
	}

	dataset := make(clusters.Observations, 0, len(samples))
	for _, c := range samples {
		dataset = append(dataset, clusters.Coordinates{
			float64(c.R) / 255.0,
			float64(c.G) / 255.0,
			float64(c.B) / 255.0,
		})
	}

	workK := min(max(k*2, k+1), len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return []spritecut.RGB{EstimateBackground(img, 0)}
	}

	// Largest clusters first: the backdrop dominates the border.
	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	const mergeDist = 0.08
	var picked []colorful.Color
	out := make([]spritecut.RGB, 0, k)
	for _, c := range cc {
		if len(c.Center) < 3 || len(out) >= k {
			break
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		dup := false
		for _, p := range picked {
			if col.DistanceLab(p) < mergeDist {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		picked = append(picked, col)
		out = append(out, spritecut.RGB{
			R: uint8(max(0, min(255, col.R*255))),
			G: uint8(max(0, min(255, col.G*255))),
			B: uint8(max(0, min(255, col.B*255))),
		})
	}
	return out
}

// DominantBackground returns the dominant color of the whole image, which on
// a sprite sheet is usually the backdrop.
func DominantBackground(img image.Image) spritecut.RGB {
	c := dominantcolor.Find(img)
	return spritecut.RGB{R: c.R, G: c.G, B: c.B}
}

// ContactSheet lays the frames out as a tiled preview grid, cols tiles per
// row, each frame thumbnailed to fit a tileSize square.
func ContactSheet(frames []spritecut.Frame, cols, tileSize int) *image.NRGBA {
	if len(frames) == 0 || cols <= 0 || tileSize <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 1, 1))
	}
	rows := (len(frames) + cols - 1) / cols
	sheet := image.NewNRGBA(image.Rect(0, 0, cols*tileSize, rows*tileSize))
	for i, fr := range frames {
		thumb := resize.Thumbnail(uint(tileSize), uint(tileSize), fr.Image, resize.Lanczos3)
		tb := thumb.Bounds()
		x0 := (i%cols)*tileSize + (tileSize-tb.Dx())/2
		y0 := (i/cols)*tileSize + (tileSize-tb.Dy())/2
		draw.Draw(sheet, image.Rect(x0, y0, x0+tb.Dx(), y0+tb.Dy()), thumb, tb.Min, draw.Over)
	}
	return sheet
}

func borderPixels(img *image.NRGBA, inset int) []spritecut.RGB {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if inset < 0 {
		inset = 0
	}
	if w <= 2*inset || h <= 2*inset {
		return nil
	}
	x0 := b.Min.X + inset
	x1 := b.Max.X - 1 - inset
	y0 := b.Min.Y + inset
	y1 := b.Max.Y - 1 - inset

	at := func(x, y int) spritecut.RGB {
		off := img.PixOffset(x, y)
		return spritecut.RGB{R: img.Pix[off], G: img.Pix[off+1], B: img.Pix[off+2]}
	}

	out := make([]spritecut.RGB, 0, 2*(x1-x0+1)+2*max(y1-y0-1, 0))
	for x := x0; x <= x1; x++ {
		out = append(out, at(x, y0))
		if y1 != y0 {
			out = append(out, at(x, y1))
		}
	}
	for y := y0 + 1; y < y1; y++ {
		out = append(out, at(x0, y))
		if x1 != x0 {
			out = append(out, at(x1, y))
		}
	}
	return out
}
