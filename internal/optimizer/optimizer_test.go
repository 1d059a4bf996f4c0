//nolint:funlen // tests
package optimizer

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"racing-line-optimizer/internal/common"
	"racing-line-optimizer/internal/line"
	"racing-line-optimizer/internal/log"
	"racing-line-optimizer/internal/physics"
	"racing-line-optimizer/internal/track"
)

var tracks = map[string][]common.Vec2{
	"circle": track.Circle(50, 100),
	"oval":   track.Oval(200, 60, 160),
	"kidney": track.Kidney(120, 160),
}

// ---------------------------------------------------------------------------
// strategies

func TestLookup(t *testing.T) {
	for name, want := range map[string]Strategy{
		"":                   LateApex,
		"lateApex":           LateApex,
		"physics_optimized":  LateApex,
		"twoStep":            TwoStep,
		"two_step_algorithm": TwoStep,
	} {
		got, err := Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, want.Name(), got.Name(), name)
	}

	_, err := Lookup("fastest")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	assert.Equal(t,
		[]string{"lateApex", "physics_optimized", "twoStep", "two_step_algorithm"},
		Names())
}

// ---------------------------------------------------------------------------
// loop

func TestTooFewPoints(t *testing.T) {
	_, err := Optimize([]common.Vec2{{}, {X: 1}}, 10, 0.9, physics.DefaultCar(), LateApex)
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestStraightScenario(t *testing.T) {
	car := physics.DefaultCar()
	car.Mass = 1500
	car.MaxAcceleration = 5
	car.DragCoefficient = 1
	car.FrontalArea = 4.9
	straight := physics.NewSolver(car, 0.9).StraightSpeed()

	res, err := Optimize(track.Straight(100, 1), 10, 0.9, car, LateApex)
	require.NoError(t, err)
	assert.Equal(t, Converged, res.Status)
	assert.Equal(t, 2, res.Iterations)
	assert.InEpsilon(t, 99/straight, res.LapTime, 0.05)
	assert.Equal(t, track.Straight(100, 1), res.Path)

	res, err = Optimize(track.Straight(100, 1), 10, 0.9, car, TwoStep)
	require.NoError(t, err)
	assert.InDelta(t, 99/physics.MaxSpeed, res.LapTime, 1e-9)
}

func TestBestSoFar(t *testing.T) {
	for name, pts := range tracks {
		for _, s := range []Strategy{LateApex, TwoStep} {
			t.Run(name+"/"+s.Name(), func(t *testing.T) {
				res, err := Optimize(pts, 12, 0.9, physics.DefaultCar(), s)
				require.NoError(t, err)

				require.Len(t, res.History, res.Iterations)
				assert.LessOrEqual(t, res.Iterations, s.Limits().MaxIterations)
				best := math.Inf(1)
				for _, it := range res.History {
					best = math.Min(best, it.LapTime)
				}
				assert.Equal(t, best, res.LapTime)
				assert.InDelta(t, physics.LapTime(res.Path, res.Speeds), res.LapTime, 1e-9)

				require.Len(t, res.Path, len(pts))
				require.Len(t, res.Speeds, len(pts))
				for _, v := range res.Speeds {
					assert.GreaterOrEqual(t, v, physics.MinSpeed)
					assert.LessOrEqual(t, v, physics.MaxSpeed)
				}

				center := track.BuildMesh(pts)
				for i, o := range line.Project(center, res.Path) {
					assert.LessOrEqual(t, math.Abs(o), 6+1e-9, "offset %d", i)
				}
				assert.True(t, track.IsClosed(res.Path))
			})
		}
	}
}

func TestDeterministic(t *testing.T) {
	for _, s := range []Strategy{LateApex, TwoStep} {
		a, err := Optimize(tracks["kidney"], 12, 0.9, physics.DefaultCar(), s)
		require.NoError(t, err)
		b, err := Optimize(tracks["kidney"], 12, 0.9, physics.DefaultCar(), s)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(a, b), s.Name())
	}
}

func TestUnusableWidthFallsBackToDefault(t *testing.T) {
	pts := track.Circle(50, 60)
	for _, s := range []Strategy{LateApex, TwoStep} {
		want, err := Optimize(pts, track.DefaultWidth, 0.9, physics.DefaultCar(), s)
		require.NoError(t, err)

		for _, width := range []float64{math.NaN(), math.Inf(1), -4} {
			got, err := Optimize(pts, width, 0.9, physics.DefaultCar(), s)
			require.NoError(t, err)
			for i, p := range got.Path {
				require.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y), "point %d", i)
			}
			assert.Empty(t, cmp.Diff(want, got), "%s width %v", s.Name(), width)
		}
	}
}

func TestLimitsOverride(t *testing.T) {
	pts := tracks["oval"]
	res, err := Optimize(pts, 12, 0.9, physics.DefaultCar(), TwoStep, WithLimits(Limits{MaxIterations: 1}))
	require.NoError(t, err)
	assert.Equal(t, MaxIterationsReached, res.Status)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, pts, res.Path)
	assert.Equal(t, "max_iterations_reached", res.Status.String())
}

func TestLogsEveryIteration(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, log.DebugLevel)

	res, err := Optimize(tracks["circle"], 12, 0.9, physics.DefaultCar(), LateApex,
		WithLogger(logger.Named("optimizer")))
	require.NoError(t, err)
	assert.Equal(t, res.Iterations, strings.Count(buf.String(), `"msg":"iteration"`))
	assert.Contains(t, buf.String(), `"strategy":"lateApex"`)
}
