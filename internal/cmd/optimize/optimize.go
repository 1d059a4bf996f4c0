package optimize

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"racing-line-optimizer/internal/cmd/cmdutil"
	"racing-line-optimizer/internal/config"
	"racing-line-optimizer/internal/log"
)

func NewOptimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "computes the racing line and speed profile for every car of a track file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(cmd)
		},
	}
	cmdutil.AddBatchFlags(cmd)
	cmd.Flags().StringVarP(&config.OutFile,
		"out",
		"o",
		"-",
		"result file (json), - for stdout")
	return cmd
}

func runOptimize(cmd *cobra.Command) error {
	_, resp, err := cmdutil.RunBatch(cmd.Context())
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if config.OutFile != "" && config.OutFile != "-" {
		f, err := os.Create(config.OutFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}
	for _, l := range resp.OptimalLines {
		log.Info("Result",
			log.String("car", l.CarID),
			log.Float64("lapTime", l.LapTime),
			log.Int("iterations", l.Iterations),
			log.String("status", l.Status.String()))
	}
	return nil
}
