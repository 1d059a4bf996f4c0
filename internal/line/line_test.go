package line

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"racing-line-optimizer/internal/common"
	"racing-line-optimizer/internal/track"
)

func context(center *track.Mesh, speeds []float64, width float64) Context {
	return Context{
		Center:          center,
		Current:         center,
		Speeds:          speeds,
		Width:           width,
		MaxAcceleration: 5,
	}
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestOffsetsStayOnTrack(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	tracks := map[string][]common.Vec2{
		"kidney": track.Kidney(120, 160),
		"oval":   track.Oval(200, 60, 160),
		"circle": track.Circle(25, 60),
	}
	strategies := map[string]func(Context) []common.Vec2{
		"late apex":     LateApex,
		"min curvature": MinCurvature,
	}

	for trackName, pts := range tracks {
		for name, update := range strategies {
			t.Run(trackName+"/"+name, func(t *testing.T) {
				center := track.BuildMesh(pts)
				speeds := make([]float64, len(pts))
				for i := range speeds {
					speeds[i] = 5 + rng.Float64()*95
				}
				for _, width := range []float64{4, 12, 30} {
					c := context(center, speeds, width)
					// feed the result back in a few times like the optimizer does
					for round := 0; round < 3; round++ {
						path := update(c)
						require.Len(t, path, len(pts))
						for i, o := range Project(center, path) {
							assert.LessOrEqual(t, math.Abs(o), width/2+1e-9, "offset %d", i)
						}
						assert.True(t, track.IsClosed(path))
						c.Current = track.BuildMesh(path)
					}
				}
			})
		}
	}
}

func TestSpeedFactor(t *testing.T) {
	assert.Equal(t, 1.0, SpeedFactor(12))
	assert.Equal(t, 0.8, SpeedFactor(30))
	assert.Equal(t, 0.8, SpeedFactor(49.9))
	assert.Equal(t, 0.6, SpeedFactor(50))
}

func TestCornerPhase(t *testing.T) {
	kappa := make([]float64, 40)
	for i := 10; i <= 30; i++ {
		// tent shaped corner peaking at index 20
		kappa[i] = 0.05 - 0.004*math.Abs(float64(i-20))
	}

	assert.Equal(t, PhaseStraight, CornerPhase(kappa, 2))
	assert.Equal(t, PhaseEntry, CornerPhase(kappa, 15))
	assert.Equal(t, PhaseApex, CornerPhase(kappa, 20))
	assert.Equal(t, PhaseExit, CornerPhase(kappa, 25))
	assert.Equal(t, "apex", PhaseApex.String())
}

func TestCornerPhasePlateau(t *testing.T) {
	// constant radius corner: window means of equal values must not read as
	// lower than the value itself
	kappa := make([]float64, 50)
	for i := 10; i <= 30; i++ {
		kappa[i] = 0.05
	}

	for i, want := range map[int]Phase{
		10: PhaseEntry,
		15: PhaseEntry,
		20: PhaseExit,
		25: PhaseExit,
		30: PhaseExit,
	} {
		assert.Equal(t, want, CornerPhase(kappa, i), "phase %d", i)
	}
}

func TestMaxOffsetIsNonNegative(t *testing.T) {
	negZero := math.Copysign(0, -1)
	assert.False(t, math.Signbit(Offsets{negZero, negZero}.Max()))
	assert.Equal(t, 3.0, Offsets{1, -3, 2}.Max())
}

func TestLateApexOnCircle(t *testing.T) {
	const width = 10.0
	center := track.BuildMesh(track.Circle(40, 80))
	offsets := LateApexOffsets(context(center, constant(81, 20), width))

	// every point is a corner point of a 20 m/s corner; rounding noise in the
	// curvature decides between the phases but not the magnitudes
	maxOffset := width * MaxOffsetShare
	allowed := []float64{-0.9 * maxOffset, 0.7 * maxOffset, 0.6 * maxOffset}
	for i := 10; i < 70; i++ {
		assert.True(t, slices.ContainsFunc(allowed, func(v float64) bool {
			return math.Abs(v-offsets[i]) < 1e-9
		}), "offset %d = %v", i, offsets[i])
	}
	for i := 0; i < 5; i++ {
		assert.Zero(t, offsets[i])
	}
}

func TestLateApexSetup(t *testing.T) {
	const width = 10.0
	mesh := track.BuildMesh(track.Straight(60, 1), track.WithSmoothing(0))
	for j := 30; j <= 45; j++ {
		mesh.Waypoints[j].Curvature = 0.05
	}
	c := context(mesh, constant(60, 20), width)
	offsets := LateApexOffsets(c)

	// 20 m/s at 5 m/s^2: braking distance 40 m, set up over the last 4 m
	maxOffset := width * MaxOffsetShare
	assert.InDelta(t, maxOffset*0.7*0.75, offsets[29], 1e-9)
	assert.InDelta(t, maxOffset*0.7*0.25, offsets[27], 1e-9)
	assert.Zero(t, offsets[26])
	assert.Zero(t, offsets[20])

	// first corner point is an entry, the last one an exit
	assert.InDelta(t, maxOffset*0.7, offsets[30], 1e-9)
	assert.InDelta(t, maxOffset*0.6, offsets[45], 1e-9)
}

func TestRadiusFactor(t *testing.T) {
	assert.Equal(t, 2.0, RadiusFactor(10))
	assert.Equal(t, 2.0, RadiusFactor(0))
	assert.Equal(t, 1.0, RadiusFactor(50))
	assert.Equal(t, 0.5, RadiusFactor(100))
}

func TestRelocate(t *testing.T) {
	prev := common.Vec2{X: 0, Y: 0}
	curr := common.Vec2{X: 10, Y: 0}
	next := common.Vec2{X: 10, Y: 10}

	got := relocate(prev, curr, next, 4, 50)
	assert.InDelta(t, 10-math.Sqrt2, got.X, 1e-9)
	assert.InDelta(t, math.Sqrt2, got.Y, 1e-9)

	// never beyond the chord midpoint
	got = relocate(prev, curr, next, 100, 100)
	assert.InDelta(t, 5, got.X, 1e-9)
	assert.InDelta(t, 5, got.Y, 1e-9)

	// collinear points stay
	assert.Equal(t, curr, relocate(prev, curr, common.Vec2{X: 20}, 4, 50))
}

func TestMinCurvatureLeavesStraightAlone(t *testing.T) {
	center := track.BuildMesh(track.Straight(30, 2))
	path := MinCurvature(context(center, constant(30, 40), 10))
	assert.Equal(t, center.Positions(), path)
}

func TestProjectAndPath(t *testing.T) {
	center := track.BuildMesh(track.Straight(5, 1))
	o := Offsets{0, 1, -2, 3, 0}
	path := o.Path(center)
	assert.Equal(t, common.Vec2{X: 2, Y: -2}, path[2])
	assert.Equal(t, o, Project(center, path))
	assert.Equal(t, 3.0, o.Max())
	assert.Equal(t, Offsets{0, 1, -1.5, 1.5, 0}, o.Clamp(3))
}
