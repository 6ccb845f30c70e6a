package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	healthuc "github.com/kailas-cloud/docflow/internal/usecase/health"
)

// NewHealthCommand creates the health command.
func NewHealthCommand(rootOpts *RootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the read and write store handles",
		Long:  "Probe the read and write store handles. Exits with code 1 when both are down.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := open(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer sess.Close()

			report := sess.Health.Check(ctx)

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if err := f.Render(report, func(w io.Writer) {
				fmt.Fprintf(w, "status: %s\n", report.Status)
				for _, name := range slices.Sorted(maps.Keys(report.Checks)) {
					fmt.Fprintf(w, "  %s: %s\n", name, report.Checks[name])
				}
			}); err != nil {
				return err
			}

			if report.Status == healthuc.Unhealthy {
				return NewExitError(ExitFailure, "document store is unreachable")
			}
			return nil
		},
	}
}
