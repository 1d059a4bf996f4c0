// Package simulate optimizes one track for several cars at once.
package simulate

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"racing-line-optimizer/internal/common"
	"racing-line-optimizer/internal/log"
	"racing-line-optimizer/internal/optimizer"
	"racing-line-optimizer/internal/physics"
	"racing-line-optimizer/internal/track"
)

// Request is a track plus the cars to optimize it for.
type Request struct {
	Track    track.File    `yaml:"track" json:"track"`
	Cars     []physics.Car `yaml:"cars" json:"cars"`
	Strategy string        `yaml:"strategy" json:"strategy"`
	// Points resamples the centerline to this many points first. 0 keeps it.
	Points int `yaml:"points" json:"points"`
	// Parallel caps concurrent runs. 0 uses the number of CPUs.
	Parallel int `yaml:"parallel" json:"parallel"`
}

// OptimalLine is the result for one car.
type OptimalLine struct {
	CarID       string           `json:"car_id"`
	Coordinates []common.Vec2    `json:"coordinates"`
	Speeds      []float64        `json:"speeds"`
	LapTime     float64          `json:"lap_time"`
	Model       string           `json:"model"`
	Iterations  int              `json:"iterations"`
	Status      optimizer.Status `json:"status"`
	Handling    physics.Handling `json:"handling"`
}

type Response struct {
	Track        string        `json:"track"`
	OptimalLines []OptimalLine `json:"optimal_lines"`
}

// LoadRequest reads a track file. Optional top level keys "cars" and
// "strategy" fill the rest of the request; without cars the default car is
// used.
func LoadRequest(path string) (Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Request{}, err
	}
	f, err := track.ParseFile(data)
	if err != nil {
		return Request{}, err
	}
	var extra struct {
		Cars     []physics.Car `yaml:"cars"`
		Strategy string        `yaml:"strategy"`
	}
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return Request{}, fmt.Errorf("%w: %w", track.ErrInvalidTrack, err)
	}
	return Request{Track: *f, Cars: extra.Cars, Strategy: extra.Strategy}, nil
}

// Run optimizes the track for every car of req. Lines are returned in car
// order. The first failing car cancels the others.
func Run(ctx context.Context, req Request, opts ...optimizer.Option) (Response, error) {
	logger := log.Default().Named("simulate")

	strategy, err := optimizer.Lookup(req.Strategy)
	if err != nil {
		return Response{}, err
	}
	points := req.Track.Points
	if err := track.Validate(points); err != nil {
		return Response{}, err
	}
	if req.Points > 0 {
		points = track.Resample(points, req.Points)
	}
	width := req.Track.Width
	if width <= 0 {
		width = track.DefaultWidth
	}
	friction := req.Track.Friction
	if friction <= 0 {
		friction = track.DefaultFriction
	}
	cars := req.Cars
	if len(cars) == 0 {
		cars = []physics.Car{physics.DefaultCar()}
	}
	parallel := req.Parallel
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}

	lines := make([]OptimalLine, len(cars))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, car := range cars {
		car = car.WithDefaults()
		g.Go(func() error {
			start := time.Now()
			res, err := optimize(gctx, points, width, friction, car, strategy, opts...)
			if err != nil {
				return fmt.Errorf("car %s: %w", car.ID, err)
			}
			lines[i] = OptimalLine{
				CarID:       car.ID,
				Coordinates: res.Path,
				Speeds:      res.Speeds,
				LapTime:     res.LapTime,
				Model:       strategy.Model(),
				Iterations:  res.Iterations,
				Status:      res.Status,
				Handling:    car.Handling(),
			}
			logger.Info("car optimized",
				log.String("car", car.ID),
				log.Float64("lapTime", res.LapTime),
				log.Int("iterations", res.Iterations),
				log.Duration("took", time.Since(start)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Response{}, err
	}
	return Response{Track: req.Track.Name, OptimalLines: lines}, nil
}

// optimize runs one optimization but gives up waiting once ctx is done. The
// computation itself has no cancellation points.
func optimize(
	ctx context.Context,
	points []common.Vec2,
	width, friction float64,
	car physics.Car,
	strategy optimizer.Strategy,
	opts ...optimizer.Option,
) (optimizer.Result, error) {
	if err := ctx.Err(); err != nil {
		return optimizer.Result{}, err
	}
	type outcome struct {
		res optimizer.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := optimizer.Optimize(points, width, friction, car, strategy, opts...)
		done <- outcome{res, err}
	}()
	select {
	case <-ctx.Done():
		return optimizer.Result{}, ctx.Err()
	case o := <-done:
		return o.res, o.err
	}
}
