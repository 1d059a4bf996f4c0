// Package imagetrack extracts a centerline from a track map image.
// It needs OpenCV through gocv and is kept apart from the pure Go track
// package.
package imagetrack

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"racing-line-optimizer/internal/track"
)

var (
	ErrUnreadable = errors.New("cannot read track image")
	ErrNoTarmac   = errors.New("track image has no drivable pixels")
)

// Result bundles the rasterized map and the traced centerline.
type Result struct {
	Grid  *track.Grid
	Trace *track.Trace
}

// Load reads a track mask (dark walls, light tarmac, optional red start
// patch), cleans it up and traces the centerline. scale is meters per pixel.
func Load(path string, scale float64, opts ...track.TraceOption) (*Result, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrUnreadable, path)
	}
	defer img.Close()

	cleaned, err := clean(img)
	if err != nil {
		return nil, err
	}
	return FromImage(cleaned, scale, opts...)
}

// FromImage traces an already decoded mask.
func FromImage(img image.Image, scale float64, opts ...track.TraceOption) (*Result, error) {
	grid := track.GridFromImage(img, scale)
	x, y, ok := grid.FindStart()
	if !ok {
		return nil, ErrNoTarmac
	}
	tr, err := track.TraceCenterline(grid, x, y, opts...)
	if err != nil {
		return nil, err
	}
	return &Result{Grid: grid, Trace: tr}, nil
}

// clean closes pinholes in the tarmac and removes speckles along the edges.
func clean(src gocv.Mat) (image.Image, error) {
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(5, 5))
	defer kernel.Close()

	closed := gocv.NewMat()
	defer closed.Close()
	if err := gocv.MorphologyEx(src, &closed, gocv.MorphClose, kernel); err != nil {
		return nil, err
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	if err := gocv.MedianBlur(closed, &blurred, 3); err != nil {
		return nil, err
	}

	return blurred.ToImage()
}
