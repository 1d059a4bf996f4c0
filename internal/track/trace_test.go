package track

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"racing-line-optimizer/internal/common"
)

// ringGrid is a 400x400 map with an annulus of tarmac between radius 60 and
// 100 around (200, 200).
func ringGrid() *Grid {
	grid := NewGrid(400, 400)
	for x := 0; x < grid.Width; x++ {
		for y := 0; y < grid.Height; y++ {
			r := math.Hypot(float64(x-200), float64(y-200))
			if r > 60 && r < 100 {
				grid.Set(x, y, CellTarmac)
			}
		}
	}
	return grid
}

func TestTraceCenterlineRing(t *testing.T) {
	grid := ringGrid()
	grid.Scale = 0.5

	tr, err := TraceCenterline(grid, 200, 120, WithStepSize(10))
	require.NoError(t, err)

	assert.True(t, IsClosed(tr.Points))
	assert.Len(t, tr.Widths, len(tr.Points))
	assert.InDelta(t, 20.0, tr.Width, 5.0) // 40 cells at 0.5 m

	center := common.Vec2{X: 100, Y: 100}
	for i, p := range tr.Points {
		r := p.Dist(center)
		assert.Greater(t, r, 32.5, "point %d", i)
		assert.Less(t, r, 47.5, "point %d", i)
	}
}

func TestTraceCenterlineNoLoop(t *testing.T) {
	// nothing drivable: the walker runs off the map without coming back
	grid := NewGrid(50, 50)
	_, err := TraceCenterline(grid, 25, 25, WithStepSize(10))
	assert.ErrorIs(t, err, ErrOpenTrace)
}

func TestGridFromRenderedMask(t *testing.T) {
	pts := Circle(30, 60)
	img := RenderMask(pts, 8, 2)
	grid := GridFromImage(img, 0.5)

	counts := map[CellType]int{}
	for x := 0; x < grid.Width; x++ {
		for y := 0; y < grid.Height; y++ {
			counts[grid.Get(x, y).Type]++
		}
	}
	assert.Positive(t, counts[CellWall])
	assert.Positive(t, counts[CellTarmac])
	assert.Positive(t, counts[CellStart])

	x, y, ok := grid.FindStart()
	require.True(t, ok)
	assert.Equal(t, CellStart, grid.Get(x, y).Type)
	assert.Equal(t, CellWall, grid.Get(-1, 0).Type)
}
