// Package spritecut cuts sprite frames out of a single sheet image.
//
// The pipeline: Detect (or SliceGrid arithmetic) yields regions over the
// alpha channel, FloodFill/ApplyMask/ChromaKey optionally matte the
// background out, and Composite renders every region onto its own
// uniform-size, centered output canvas.
package spritecut

import (
	"errors"
	"image"
)

// MaxTolerance is the largest meaningful Manhattan RGB distance: three
// channels fully apart.
const MaxTolerance = 765

// DefaultTolerance is the Manhattan RGB distance used by FloodFill and
// background keying when the caller has no better value.
const DefaultTolerance = 30

var (
	ErrNilImage          = errors.New("spritecut: nil image")
	ErrDimensionMismatch = errors.New("spritecut: mask and image dimensions differ")
	ErrInvalidOutputSize = errors.New("spritecut: custom output size must be at least 1x1")
)

// RGB is an explicit color key. Alpha never participates in keying.
type RGB struct {
	R, G, B uint8
}

// Region is a detected or caller-supplied area of the source image.
type Region struct {
	// Bounding rectangle in image space.
	Rect image.Rectangle
	// Optional closed polygon of at least 3 image-space points. When set,
	// compositing restricts drawing to the polygon interior (nonzero winding).
	Path []image.Point
}

// Frame is one processed output frame. Frames are independently owned by the
// caller; they share no pixels with the source image.
type Frame struct {
	// ID is the dense 0-based index mirroring the order of the input regions.
	ID int
	// Image is the frame canvas, always exactly the shared batch output size.
	Image *image.NRGBA
	// Source is the region rectangle this frame was cut from.
	Source image.Rectangle
}

// SizePolicy selects how the shared output canvas size is chosen for a batch.
type SizePolicy int

const (
	// SizeAuto sizes the canvas to max width x max height over all regions in
	// the batch (each floored to at least 1). Content is drawn 1:1. The canvas
	// aspect ratio may match no single region; that is intentional so that
	// consumers get uniform frames.
	SizeAuto SizePolicy = iota
	// SizeCustom uses the caller's width/height and uniformly scales every
	// region to fit, preserving aspect ratio.
	SizeCustom
)

// OutputSize is the canvas sizing policy for Composite and SliceGrid.
type OutputSize struct {
	Policy SizePolicy
	// Width, Height apply to SizeCustom only; both must be >= 1.
	Width, Height int
}

// DetectOptions tunes connected-component region detection.
type DetectOptions struct {
	// AlphaThreshold: a pixel belongs to a region iff its alpha is strictly
	// above this value. The default of 10 ignores near-transparent halos
	// left by antialiased edges.
	AlphaThreshold uint8
	// RowTolerance: regions whose top edges differ by at most this many
	// pixels count as one row and sort left to right. Approximates reading
	// order under slight vertical jitter. Ideal start: ~half the smallest
	// expected sprite height.
	RowTolerance int
}

func DefaultDetectOptions() DetectOptions {
	return DetectOptions{
		AlphaThreshold: 10,
		RowTolerance:   10,
	}
}

// CompositeOptions tunes frame rendering.
type CompositeOptions struct {
	// RemoveBackground chroma-keys the finished canvas of every frame,
	// evaluating tolerance against resampled colors rather than source
	// colors.
	RemoveBackground bool
	// Background is the key color for RemoveBackground. When nil it is
	// resolved once per call from pixel (0,0) of the source image. Callers
	// with a better estimate (see utils.EstimateBackground) should set it.
	Background *RGB
	// Tolerance is the Manhattan RGB distance for background keying.
	Tolerance int
	// Output selects the canvas sizing policy.
	Output OutputSize
}

func DefaultCompositeOptions() CompositeOptions {
	return CompositeOptions{
		Tolerance: DefaultTolerance,
		Output:    OutputSize{Policy: SizeAuto},
	}
}

func clampTolerance(tol int) int {
	if tol < 0 {
		return 0
	}
	if tol > MaxTolerance {
		return MaxTolerance
	}
	return tol
}

func manhattanRGB(r, g, b uint8, key RGB) int {
	return absInt(int(r)-int(key.R)) + absInt(int(g)-int(key.G)) + absInt(int(b)-int(key.B))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
