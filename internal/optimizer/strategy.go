package optimizer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"racing-line-optimizer/internal/common"
	"racing-line-optimizer/internal/line"
	"racing-line-optimizer/internal/physics"
	"racing-line-optimizer/internal/track"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// Limits bound the iteration loop of one strategy.
type Limits struct {
	MaxIterations int     `mapstructure:"max_iterations" yaml:"max_iterations"`
	Threshold     float64 `mapstructure:"threshold" yaml:"threshold"` // seconds
}

// Strategy pairs a speed profile method with a path update method.
type Strategy interface {
	Name() string
	// Model is the label reported with results.
	Model() string
	SpeedProfile(s *physics.Solver, mesh *track.Mesh) []float64
	UpdatePath(c line.Context) []common.Vec2
	Limits() Limits
}

type lateApex struct{}

func (lateApex) Name() string  { return "lateApex" }
func (lateApex) Model() string { return "physics_optimized" }

func (lateApex) SpeedProfile(s *physics.Solver, mesh *track.Mesh) []float64 {
	return s.PointwiseProfile(mesh)
}

func (lateApex) UpdatePath(c line.Context) []common.Vec2 {
	return line.LateApex(c)
}

func (lateApex) Limits() Limits {
	return Limits{MaxIterations: 4, Threshold: 0.15}
}

type twoStep struct{}

func (twoStep) Name() string  { return "twoStep" }
func (twoStep) Model() string { return "two_step_algorithm" }

func (twoStep) SpeedProfile(s *physics.Solver, mesh *track.Mesh) []float64 {
	return s.ForwardBackward(mesh).Final
}

func (twoStep) UpdatePath(c line.Context) []common.Vec2 {
	return line.MinCurvature(c)
}

func (twoStep) Limits() Limits {
	return Limits{MaxIterations: 5, Threshold: 0.1}
}

var (
	// LateApex evaluates every point on its own and shifts corners towards a
	// late apex.
	LateApex Strategy = lateApex{}
	// TwoStep integrates speeds forward and backward and pulls the most
	// curved points inwards.
	TwoStep Strategy = twoStep{}
)

var strategies = map[string]Strategy{
	LateApex.Name():  LateApex,
	LateApex.Model(): LateApex,
	TwoStep.Name():   TwoStep,
	TwoStep.Model():  TwoStep,
}

// Lookup resolves a strategy by name or by model label. An empty name
// selects LateApex.
func Lookup(name string) (Strategy, error) {
	if name == "" {
		return LateApex, nil
	}
	if s, ok := strategies[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownStrategy, name, Names())
}

// Names lists every accepted strategy name.
func Names() []string {
	names := lo.Keys(strategies)
	slices.Sort(names)
	return names
}
