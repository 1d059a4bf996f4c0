// Package optimizer runs the geometry, speed and lap time loop until the lap
// time settles and returns the best line it saw.
package optimizer

import (
	"math"
	"time"

	"racing-line-optimizer/internal/common"
	"racing-line-optimizer/internal/line"
	"racing-line-optimizer/internal/log"
	"racing-line-optimizer/internal/physics"
	"racing-line-optimizer/internal/track"
)

var ErrTooFewPoints = track.ErrTooFewPoints

// Status tells why the loop stopped.
type Status int

const (
	Converged Status = iota
	MaxIterationsReached
)

func (s Status) String() string {
	if s == Converged {
		return "converged"
	}
	return "max_iterations_reached"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Iteration records one pass of the loop.
type Iteration struct {
	LapTime   float64 `json:"lap_time"`
	MaxOffset float64 `json:"max_offset"`
	Best      bool    `json:"best"`
}

// Result is the best line found. Path, Speeds and LapTime belong to the same
// iteration, which need not be the last one.
type Result struct {
	Strategy   string        `json:"strategy"`
	Path       []common.Vec2 `json:"path"`
	Speeds     []float64     `json:"speeds"`
	LapTime    float64       `json:"lap_time"`
	Iterations int           `json:"iterations"`
	Status     Status        `json:"status"`
	History    []Iteration   `json:"history"`
}

type options struct {
	logger    *log.Logger
	smoothing float64
	solver    physics.SolverConfig
	limits    *Limits
}

type Option func(*options)

func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSmoothing sets the curvature smoothing sigma used for every mesh.
func WithSmoothing(sigma float64) Option {
	return func(o *options) { o.smoothing = sigma }
}

func WithSolverConfig(cfg physics.SolverConfig) Option {
	return func(o *options) { o.solver = cfg }
}

// WithLimits overrides the iteration cap and convergence threshold of the
// strategy. Non-positive fields keep the strategy value.
func WithLimits(l Limits) Option {
	return func(o *options) { o.limits = &l }
}

// Optimize refines a racing line on a track of the given full width,
// starting from the centerline.
//
//nolint:funlen // single loop reads better in one piece
func Optimize(
	centerline []common.Vec2,
	width, friction float64,
	car physics.Car,
	strategy Strategy,
	opts ...Option,
) (Result, error) {
	if err := track.Validate(centerline); err != nil {
		return Result{}, err
	}
	if strategy == nil {
		strategy = LateApex
	}
	o := options{
		logger:    log.Default().Named("optimizer"),
		smoothing: track.DefaultSmoothing,
		solver:    physics.DefaultSolverConfig(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	limits := strategy.Limits()
	if o.limits != nil {
		if o.limits.MaxIterations > 0 {
			limits.MaxIterations = o.limits.MaxIterations
		}
		if o.limits.Threshold > 0 {
			limits.Threshold = o.limits.Threshold
		}
	}

	if math.IsNaN(width) || math.IsInf(width, 0) || width < 0 {
		o.logger.Warn("unusable track width, using default",
			log.Float64("width", width),
			log.Float64("default", track.DefaultWidth))
		width = track.DefaultWidth
	}

	solver := physics.NewSolver(car, friction, physics.WithSolverConfig(o.solver))
	center := track.BuildMesh(centerline, track.WithSmoothing(o.smoothing))
	logger := o.logger.With(log.String("strategy", strategy.Name()))
	start := time.Now()

	res := Result{Strategy: strategy.Name(), LapTime: math.Inf(1)}
	path := centerline
	prev := math.NaN()
	for iter := 0; ; iter++ {
		mesh := center
		if iter > 0 {
			mesh = track.BuildMesh(path, track.WithSmoothing(o.smoothing))
		}
		speeds := strategy.SpeedProfile(solver, mesh)
		lap := physics.LapTime(path, speeds)

		it := Iteration{LapTime: lap, MaxOffset: line.Project(center, path).Max()}
		if lap < res.LapTime {
			res.Path = path
			res.Speeds = speeds
			res.LapTime = lap
			it.Best = true
		}
		res.History = append(res.History, it)
		res.Iterations = iter + 1

		logger.Debug("iteration",
			log.Int("iteration", iter),
			log.Float64("lapTime", lap),
			log.Float64("maxOffset", it.MaxOffset),
			log.Bool("best", it.Best))

		if iter > 0 && math.Abs(lap-prev) < limits.Threshold {
			res.Status = Converged
			break
		}
		if res.Iterations >= limits.MaxIterations {
			res.Status = MaxIterationsReached
			break
		}

		path = strategy.UpdatePath(line.Context{
			Center:          center,
			Current:         mesh,
			Speeds:          speeds,
			Width:           width,
			MaxAcceleration: solver.Car().MaxAcceleration,
		})
		prev = lap
	}

	logger.Debug("done",
		log.String("status", res.Status.String()),
		log.Int("iterations", res.Iterations),
		log.Float64("lapTime", res.LapTime),
		log.Duration("took", time.Since(start)))
	return res, nil
}
