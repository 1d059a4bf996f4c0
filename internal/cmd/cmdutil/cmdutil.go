// Package cmdutil holds the pieces shared by the racingline subcommands.
package cmdutil

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"racing-line-optimizer/internal/config"
	"racing-line-optimizer/internal/log"
	"racing-line-optimizer/internal/optimizer"
	"racing-line-optimizer/internal/simulate"
)

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger replaces the default logger according to the log flags.
func SetupLogger() error {
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.DebugLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	if config.LogFilter != "" {
		filtered, err := logger.WithFilter(config.LogFilter)
		if err != nil {
			return fmt.Errorf("invalid log filter: %w", err)
		}
		logger = filtered
	}
	log.ResetDefault(logger)
	return nil
}

// AddBatchFlags registers the flags RunBatch reads.
func AddBatchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&config.TrackFile,
		"track",
		"t",
		"",
		"track file (yaml or json)")
	cmd.Flags().StringVarP(&config.Strategy,
		"strategy",
		"s",
		"",
		fmt.Sprintf("optimization strategy %v (default from track file, else lateApex)",
			optimizer.Names()))
	cmd.Flags().IntVar(&config.Points,
		"points",
		100,
		"resample the centerline to this many points (0 keeps the input)")
	cmd.Flags().IntVar(&config.Parallel,
		"parallel",
		0,
		"cars optimized concurrently (0 = number of CPUs)")
	cmd.Flags().StringVar(&config.Timeout,
		"timeout",
		"30s",
		"wall clock limit for the whole batch")
	_ = cmd.MarkFlagRequired("track")
}

// RunBatch loads the track file named by the flags and optimizes it for
// every car listed in it.
func RunBatch(ctx context.Context) (simulate.Request, simulate.Response, error) {
	req, err := simulate.LoadRequest(config.TrackFile)
	if err != nil {
		return simulate.Request{}, simulate.Response{}, err
	}
	if config.Strategy != "" {
		req.Strategy = config.Strategy
	}
	req.Points = config.Points
	req.Parallel = config.Parallel

	strategy, err := optimizer.Lookup(req.Strategy)
	if err != nil {
		return req, simulate.Response{}, err
	}
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return req, simulate.Response{}, fmt.Errorf("invalid settings: %w", err)
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return req, simulate.Response{}, fmt.Errorf("invalid timeout: %w", err)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	log.Debug("Starting batch",
		log.String("track", config.TrackFile),
		log.String("strategy", strategy.Name()),
		log.Int("cars", len(req.Cars)),
		log.Int("points", req.Points),
		log.Duration("timeout", timeout))

	resp, err := simulate.Run(ctx, req, settings.Options(strategy)...)
	if err != nil {
		log.Error("batch failed", log.ErrorField(err))
		return req, simulate.Response{}, err
	}
	return req, resp, nil
}
