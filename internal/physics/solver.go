package physics

import (
	"math"

	"github.com/samber/lo"

	"racing-line-optimizer/internal/aero"
	"racing-line-optimizer/internal/track"
)

const (
	// CornerThreshold is the |curvature| above which a point is a corner.
	CornerThreshold = 1e-6

	// StraightSafetyFactor is the share of m*a_max available against drag.
	StraightSafetyFactor = 0.8

	cornerGuess   = 30.0 // m/s
	straightGuess = 60.0 // m/s
)

// SolverConfig tunes the damped fixed-point corner solver.
type SolverConfig struct {
	Rounds    int     `mapstructure:"rounds" yaml:"rounds"`       // iteration cap
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance"` // m/s
	Damping   float64 `mapstructure:"damping" yaml:"damping"`     // weight of the previous estimate
}

// DefaultSolverConfig returns the tuning used by both strategies.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{Rounds: 5, Tolerance: 0.3, Damping: 0.6}
}

// Solver computes speed limits for one car on one surface.
type Solver struct {
	car      Car
	friction float64
	cfg      SolverConfig
	aero     *aero.Model
}

// SolverOption configures a Solver.
type SolverOption func(*Solver)

// WithSolverConfig replaces the corner solver tuning. Invalid values fall
// back to the defaults.
func WithSolverConfig(cfg SolverConfig) SolverOption {
	return func(s *Solver) {
		def := DefaultSolverConfig()
		if cfg.Rounds <= 0 {
			cfg.Rounds = def.Rounds
		}
		if cfg.Tolerance <= 0 {
			cfg.Tolerance = def.Tolerance
		}
		if cfg.Damping < 0 || cfg.Damping >= 1 {
			cfg.Damping = def.Damping
		}
		s.cfg = cfg
	}
}

// WithAeroModel swaps the aerodynamic map.
func WithAeroModel(m *aero.Model) SolverOption {
	return func(s *Solver) {
		if m != nil {
			s.aero = m
		}
	}
}

// NewSolver creates a solver; car fields that are not set get defaults.
func NewSolver(car Car, friction float64, opts ...SolverOption) *Solver {
	s := &Solver{
		car:      car.WithDefaults(),
		friction: friction,
		cfg:      DefaultSolverConfig(),
		aero:     aero.Default,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Car returns the effective car parameters.
func (s *Solver) Car() Car {
	return s.car
}

// CornerSpeed is the grip limited speed at curvature kappa including
// downforce. Downforce depends on speed, so the balance
// v = sqrt(mu*(m*g + F_down(v)) / (m*|kappa|)) is iterated with damping.
// The last computed value is accepted when the round cap is hit.
func (s *Solver) CornerSpeed(kappa float64) float64 {
	k := math.Abs(kappa)
	if k <= CornerThreshold || math.IsNaN(k) {
		return MaxSpeed
	}
	m := s.car.Mass
	area := s.car.EffectiveFrontalArea()

	est := cornerGuess
	next := est
	for range s.cfg.Rounds {
		_, down := s.aero.Forces(est, area, s.car.DragCoefficient, s.car.LiftCoefficient)
		next = math.Sqrt(s.friction * (m*Gravity + down) / (m * k))
		if math.Abs(next-est) < s.cfg.Tolerance {
			break
		}
		est = s.cfg.Damping*est + (1-s.cfg.Damping)*next
	}
	return clampSpeed(next)
}

// StraightSpeed is the drag limited top speed where a safety share of the
// maximum drive force balances aerodynamic drag.
func (s *Solver) StraightSpeed() float64 {
	drive := s.car.Mass * s.car.MaxAcceleration * StraightSafetyFactor
	v := s.aero.DragLimitedSpeed(drive, s.car.EffectiveFrontalArea(), s.car.DragCoefficient, straightGuess)
	return clampSpeed(v)
}

// PointwiseProfile evaluates every point on its own: corner speed where the
// mesh bends, drag limited speed elsewhere.
func (s *Solver) PointwiseProfile(mesh *track.Mesh) []float64 {
	speeds := make([]float64, len(mesh.Waypoints))
	straight := -1.0
	for i, wp := range mesh.Waypoints {
		if math.Abs(wp.Curvature) > CornerThreshold {
			speeds[i] = s.CornerSpeed(wp.Curvature)
			continue
		}
		if straight < 0 {
			straight = s.StraightSpeed()
		}
		speeds[i] = straight
	}
	return speeds
}

func clampSpeed(v float64) float64 {
	if math.IsNaN(v) {
		return MinSpeed
	}
	return lo.Clamp(v, MinSpeed, MaxSpeed)
}
