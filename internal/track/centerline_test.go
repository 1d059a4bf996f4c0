package track

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"racing-line-optimizer/internal/common"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(Straight(3, 1)))
	assert.ErrorIs(t, Validate(Straight(2, 1)), ErrTooFewPoints)
	assert.ErrorIs(t, Validate(nil), ErrTooFewPoints)

	bad := Straight(5, 1)
	bad[3].Y = math.NaN()
	assert.ErrorIs(t, Validate(bad), ErrNonFinitePoint)
}

func TestClosure(t *testing.T) {
	assert.True(t, IsClosed(Circle(10, 20)))
	assert.False(t, IsClosed(Straight(10, 1)))

	closed := Close(Straight(3, 1))
	require.Len(t, closed, 4)
	assert.True(t, IsClosed(closed))

	// already closed loops are left alone
	assert.Len(t, Close(Circle(10, 20)), 21)
}

func TestResampleClosedLoop(t *testing.T) {
	const radius = 50.0
	dense := Circle(radius, 400)
	out := Resample(dense, 100)

	require.Len(t, out, 101)
	assert.True(t, IsClosed(out))
	assert.InDelta(t, dense[0].X, out[0].X, 1e-6)
	assert.InDelta(t, dense[0].Y, out[0].Y, 1e-6)
	for i, p := range out {
		assert.InDelta(t, radius, p.Len(), 0.05, "radius at %d", i)
	}

	// evenly spaced along the loop
	step := Length(out) / 100
	for i := 1; i < len(out); i++ {
		assert.InEpsilon(t, step, out[i].Dist(out[i-1]), 0.01)
	}
}

func TestResampleOpenPath(t *testing.T) {
	dense := Straight(200, 0.5)
	out := Resample(dense, 50)

	require.Len(t, out, 50)
	assert.InDelta(t, 0.0, out[0].X, 1e-9)
	assert.InDelta(t, 99.5, out[len(out)-1].X, 1e-9)
	for _, p := range out {
		assert.InDelta(t, 0.0, p.Y, 1e-9)
	}
}

func TestResampleKeepsShortPaths(t *testing.T) {
	in := Circle(20, 30)
	out := Resample(in, 100)
	assert.Equal(t, in, out)
}

func TestBounds(t *testing.T) {
	low, high := Bounds([]common.Vec2{{X: 1, Y: -2}, {X: -4, Y: 3}, {X: 0, Y: 0}})
	assert.Equal(t, common.Vec2{X: -4, Y: -2}, low)
	assert.Equal(t, common.Vec2{X: 1, Y: 3}, high)
}

func TestPresets(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			pts, err := Preset(name)
			require.NoError(t, err)
			assert.NoError(t, Validate(pts))
		})
	}

	_, err := Preset("monza")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestPresetsNeedThreePoints(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		assert.Nil(t, Circle(10, n))
		assert.Nil(t, Oval(20, 10, n))
		assert.Nil(t, Kidney(10, n))
	}
	assert.Len(t, Circle(10, 3), 4)
}

func TestOvalIsClosedStadium(t *testing.T) {
	pts := Oval(200, 60, 160)
	assert.True(t, IsClosed(pts))
	assert.InEpsilon(t, 2*200+2*math.Pi*60, Length(pts), 0.01)

	mesh := BuildMesh(pts)
	// the middle of the first straight is flat, the middle of the first bend
	// is close to 1/radius
	assert.InDelta(t, 0.0, mesh.Waypoints[12].Curvature, 1e-3)
	assert.InEpsilon(t, 1.0/60, mesh.Waypoints[60].Curvature, 0.05)
}
