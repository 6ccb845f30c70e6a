package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	domflow "github.com/kailas-cloud/docflow/internal/domain/flow"
)

type flowOptions struct {
	claimID    int64
	documentID int64
	eclaimID   int64
}

// NewFlowCommand creates the flow command.
func NewFlowCommand(rootOpts *RootOptions, open Opener) *cobra.Command {
	opts := &flowOptions{}

	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Reconstruct the event flow of a claim",
		Long: `Reconstruct the ordered state changes of the records linked to a claim.

Exactly one key is used: --eclaim-id wins over --document-id, which wins over --claim-id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlow(cmd, rootOpts, opts, open)
		},
	}

	cmd.Flags().Int64Var(&opts.claimID, "claim-id", 0, "health insured claim id")
	cmd.Flags().Int64Var(&opts.documentID, "document-id", 0, "health document id")
	cmd.Flags().Int64Var(&opts.eclaimID, "eclaim-id", 0, "electronic claim (damage request) id")

	return cmd
}

func runFlow(cmd *cobra.Command, rootOpts *RootOptions, opts *flowOptions, open Opener) error {
	if opts.claimID <= 0 && opts.documentID <= 0 && opts.eclaimID <= 0 {
		return NewExitError(ExitCommandError, "one of --claim-id, --document-id or --eclaim-id is required")
	}

	ctx := cmd.Context()
	sess, err := open(ctx, rootOpts)
	if err != nil {
		return err
	}
	defer sess.Close()

	var events []domflow.Event
	switch {
	case opts.eclaimID > 0:
		events, err = sess.Flow.ByDamageRequestID(ctx, opts.eclaimID)
	case opts.documentID > 0:
		events, err = sess.Flow.ByDocumentID(ctx, opts.documentID)
	default:
		events, err = sess.Flow.ByClaimID(ctx, opts.claimID)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "reconstruct flow", err)
	}
	if events == nil {
		events = []domflow.Event{}
	}

	f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	return f.Render(events, func(w io.Writer) {
		if len(events) == 0 {
			fmt.Fprintln(w, "no events")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TIMESTAMP\tMODEL\tSTATE\tID")
		for _, e := range events {
			fmt.Fprintf(tw, "%v\t%v\t%v\t%s\n",
				orDash(e.Source[domflow.FieldTimestamp]), orDash(e.Tag()), orDash(e.State()), e.ID)
		}
		_ = tw.Flush()
	})
}

func orDash(v any) any {
	if v == nil {
		return "-"
	}
	return v
}
