package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/docflow/internal/domain/bulk"
)

type ingestOptions struct {
	chunkSize int
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions, open Opener) *cobra.Command {
	opts := &ingestOptions{}

	cmd := &cobra.Command{
		Use:   "ingest <index> <file>",
		Short: "Bulk-load documents into an index",
		Long: `Bulk-load documents from a JSON array or newline-delimited JSON file.

A document's "_id" field becomes its id and is removed from the stored source.
Exits with code 1 when any document was rejected.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, rootOpts, opts, open, args[0], args[1])
		},
	}

	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", 0, "documents per bulk request (default from config)")

	return cmd
}

func runIngest(cmd *cobra.Command, rootOpts *RootOptions, opts *ingestOptions, open Opener, index, path string) error {
	if opts.chunkSize < 0 {
		return NewExitError(ExitCommandError, "--chunk-size must not be negative")
	}

	docs, err := readDocuments(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "read "+path, err)
	}

	ctx := cmd.Context()
	sess, err := open(ctx, rootOpts)
	if err != nil {
		return err
	}
	defer sess.Close()

	out, err := sess.Ingest.BulkInsert(ctx, index, docs, opts.chunkSize)
	if err != nil {
		return WrapExitError(ExitFailure, "bulk insert", err)
	}

	f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	if err := f.Render(out, func(w io.Writer) {
		fmt.Fprintf(w, "index %s: %d inserted, %d failed\n", index, out.Summary.Inserted, out.Summary.Failed)
		for _, e := range out.Errors {
			fmt.Fprintf(w, "  %s: %s\n", e.ID, e.Reason)
		}
	}); err != nil {
		return err
	}

	if out.Kind() != bulk.AllSucceeded {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d documents rejected",
			out.Summary.Failed, out.Summary.Inserted+out.Summary.Failed))
	}
	return nil
}

// readDocuments loads a JSON array of objects or a stream of newline-delimited objects.
// Numbers keep their JSON text.
func readDocuments(path string) ([]map[string]any, error) {
	fh, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()
	return decodeDocuments(fh)
}

func decodeDocuments(r io.Reader) ([]map[string]any, error) {
	br := bufio.NewReader(r)
	first, err := firstByte(br)
	if errors.Is(err, io.EOF) {
		return []map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()

	if first == '[' {
		var docs []map[string]any
		if err := dec.Decode(&docs); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
		if docs == nil {
			docs = []map[string]any{}
		}
		return docs, nil
	}

	docs := []map[string]any{}
	for n := 1; ; n++ {
		var doc map[string]any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode document %d: %w", n, err)
		}
		if doc == nil {
			return nil, fmt.Errorf("document %d: not an object", n)
		}
		docs = append(docs, doc)
	}
}

// firstByte returns the first non-whitespace byte without consuming it.
func firstByte(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
