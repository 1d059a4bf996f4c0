package plot

import (
	"fmt"

	"github.com/spf13/cobra"
	gonumplot "gonum.org/v1/plot"

	"racing-line-optimizer/internal/cmd/cmdutil"
	"racing-line-optimizer/internal/config"
	"racing-line-optimizer/internal/log"
	"racing-line-optimizer/internal/report"
)

func NewPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "optimizes a track and renders the result as png",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if config.PlotKind != "speed" && config.PlotKind != "track" {
				return fmt.Errorf("unknown plot kind %q", config.PlotKind)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(cmd)
		},
	}
	cmdutil.AddBatchFlags(cmd)
	cmd.Flags().StringVarP(&config.PlotFile,
		"out",
		"o",
		"profile.png",
		"png file to write")
	cmd.Flags().StringVar(&config.PlotKind,
		"kind",
		"speed",
		"speed (speed over distance) or track (lines from above)")
	cmd.Flags().Float64Var(&config.PlotWidth, "plot-width", 8, "image width in inches")
	cmd.Flags().Float64Var(&config.PlotHeight, "plot-height", 5, "image height in inches")
	return cmd
}

func runPlot(cmd *cobra.Command) error {
	req, resp, err := cmdutil.RunBatch(cmd.Context())
	if err != nil {
		return err
	}
	title := resp.Track
	if title == "" {
		title = config.TrackFile
	}

	var p *gonumplot.Plot
	switch config.PlotKind {
	case "track":
		p, err = report.TrackPlot(title, req.Track.Points, resp.OptimalLines)
	default:
		p, err = report.SpeedPlot(title, resp.OptimalLines)
	}
	if err != nil {
		return err
	}
	if err := report.SavePNG(p, config.PlotFile, config.PlotWidth, config.PlotHeight); err != nil {
		return err
	}
	log.Info("Plot written", log.String("file", config.PlotFile))
	return nil
}
