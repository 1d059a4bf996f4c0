package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"racing-line-optimizer/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "prints the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.FullVersion)
		},
	}
}
