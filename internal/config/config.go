package config

import (
	"github.com/spf13/viper"

	"racing-line-optimizer/internal/optimizer"
	"racing-line-optimizer/internal/physics"
	"racing-line-optimizer/internal/track"
)

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	LogLevel   string  // sets the log level (zap log level values)
	LogFormat  string  // text vs json
	LogFilter  string  // zapfilter rules, e.g. "info+:* debug:optimizer"
	TrackFile  string  // path to the track description (yaml or json)
	Strategy   string  // lateApex or twoStep
	Points     int     // resample the centerline to this many points, 0 keeps it
	OutFile    string  // where results are written, "-" for stdout
	PlotFile   string  // png written by plot
	Parallel   int     // concurrent car optimizations
	Timeout    string  // wall clock limit for a batch
	Preset     string  // track preset for gen-track
	GenFile    string  // track file written by gen-track
	ImageFile  string  // optional mask image written by gen-track
	PxPerMeter float64 // resolution of mask images
	FromImage  string  // trace the track from this mask image instead of a preset
	TrackWidth float64 // width stored in generated track files, 0 uses the traced width
	PlotWidth  float64 // inches
	PlotHeight float64 // inches
	PlotKind   string  // speed or track
)

// Settings are the solver tunables read from the config file.
type Settings struct {
	Smoothing float64              `mapstructure:"smoothing"`
	Solver    physics.SolverConfig `mapstructure:"solver"`
	LateApex  optimizer.Limits     `mapstructure:"late_apex"`
	TwoStep   optimizer.Limits     `mapstructure:"two_step"`
}

func DefaultSettings() Settings {
	return Settings{
		Smoothing: track.DefaultSmoothing,
		Solver:    physics.DefaultSolverConfig(),
		LateApex:  optimizer.LateApex.Limits(),
		TwoStep:   optimizer.TwoStep.Limits(),
	}
}

// Load reads the settings from v on top of the defaults.
func Load(v *viper.Viper) (Settings, error) {
	s := DefaultSettings()
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Options turns the settings into optimizer options for strategy.
func (s Settings) Options(strategy optimizer.Strategy) []optimizer.Option {
	limits := s.LateApex
	if strategy.Name() == optimizer.TwoStep.Name() {
		limits = s.TwoStep
	}
	return []optimizer.Option{
		optimizer.WithSmoothing(s.Smoothing),
		optimizer.WithSolverConfig(s.Solver),
		optimizer.WithLimits(limits),
	}
}
