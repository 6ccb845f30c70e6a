// Package cli implements docflowctl, the operator command line for docflow.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Env    string // config/<env>.yaml; empty uses $ENV
	Config string // explicit config file, overrides Env
	Format string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. open connects commands to the document store.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "docflowctl",
		Short:         "docflowctl - operate the docflow document store",
		Long:          "Reconstruct claim flows, bulk-load documents and probe the document store.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Env, "env", "", "environment selecting config/<env>.yaml (default $ENV or local)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "explicit config file path")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewFlowCommand(opts, open))
	cmd.AddCommand(NewIngestCommand(opts, open))
	cmd.AddCommand(NewHealthCommand(opts, open))

	return cmd
}
