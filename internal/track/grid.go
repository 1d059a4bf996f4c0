package track

import (
	"image"
	"image/color"
)

// CellType classifies one pixel of a track mask.
type CellType int

const (
	CellWall CellType = iota
	CellTarmac
	CellGravel
	CellStart
)

// Cell is one classified mask pixel.
type Cell struct {
	Type     CellType
	Friction float64 // multiplier on the track friction, 0 off track
}

// Grid is a track mask classified into surfaces, stored row-major.
type Grid struct {
	Width, Height int
	Cells         []Cell
	Scale         float64 // meters per cell
}

// NewGrid returns a width x height grid where every cell is a wall.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Cells:  make([]Cell, width*height),
		Scale:  1,
	}
}

func (g *Grid) inside(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// Get returns the cell at (x, y); anything outside the grid is a wall.
func (g *Grid) Get(x, y int) Cell {
	if !g.inside(x, y) {
		return Cell{Type: CellWall}
	}
	return g.Cells[y*g.Width+x]
}

// Set stores a cell of type t with its default friction.
func (g *Grid) Set(x, y int, t CellType) {
	if g.inside(x, y) {
		g.Cells[y*g.Width+x] = Cell{Type: t, Friction: cellFriction(t)}
	}
}

// Drivable reports whether (x, y) is not a wall.
func (g *Grid) Drivable(x, y int) bool {
	return g.Get(x, y).Type != CellWall
}

// FindStart returns the first start cell, or the first tarmac cell when the
// map has no start marker. Cells are scanned column by column.
func (g *Grid) FindStart() (int, int, bool) {
	for _, want := range []CellType{CellStart, CellTarmac} {
		for x := range g.Width {
			for y := range g.Height {
				if g.Get(x, y).Type == want {
					return x, y, true
				}
			}
		}
	}
	return 0, 0, false
}

func cellFriction(t CellType) float64 {
	switch t {
	case CellGravel:
		return 0.4
	case CellWall:
		return 0
	default:
		return 1
	}
}

// GridFromImage classifies every pixel of img.
func GridFromImage(img image.Image, scale float64) *Grid {
	bounds := img.Bounds()
	grid := NewGrid(bounds.Dx(), bounds.Dy())
	if scale > 0 {
		grid.Scale = scale
	}
	for y := range grid.Height {
		for x := range grid.Width {
			grid.Set(x, y, ColorToCellType(img.At(bounds.Min.X+x, bounds.Min.Y+y)))
		}
	}
	return grid
}

// ColorToCellType thresholds a mask pixel: strong red marks the start line,
// green-dominant is gravel, near-black is wall, anything else is tarmac.
func ColorToCellType(c color.Color) CellType {
	r16, g16, b16, _ := c.RGBA()
	r, g, b := r16>>8, g16>>8, b16>>8

	switch {
	case r > 200 && g < 100 && b < 100:
		return CellStart
	case g > r+50 && g > b+50:
		return CellGravel
	case r < 50 && g < 50 && b < 50:
		return CellWall
	default:
		return CellTarmac
	}
}
