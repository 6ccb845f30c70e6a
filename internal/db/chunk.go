package db

import (
	"context"
	"iter"
)

// ChunkWriter writes one chunk of actions and returns exactly one item per action, in order.
// Failures are reported as items; it never returns fewer items than actions.
type ChunkWriter func(ctx context.Context, chunk []BulkAction) []BulkItem

// Chunked adapts a ChunkWriter into a lazy Bulk stream: actions are pulled chunkSize at a
// time, each chunk is written once it is full (or the input ends), and its items are
// yielded before the next chunk is read. Cancellation is checked before every chunk.
func Chunked(
	ctx context.Context, actions iter.Seq[BulkAction], chunkSize int, write ChunkWriter,
) iter.Seq2[BulkItem, error] {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return func(yield func(BulkItem, error) bool) {
		chunk := make([]BulkAction, 0, chunkSize)

		flush := func() bool {
			defer func() { chunk = chunk[:0] }()
			if err := ctx.Err(); err != nil {
				yield(BulkItem{}, err)
				return false
			}
			for _, item := range write(ctx, chunk) {
				if !yield(item, nil) {
					return false
				}
			}
			return true
		}

		for a := range actions {
			chunk = append(chunk, a)
			if len(chunk) == chunkSize && !flush() {
				return
			}
		}
		if len(chunk) > 0 {
			flush()
		}
	}
}

// DefaultChunkSize is used when Bulk is called with a non-positive chunk size.
const DefaultChunkSize = 1000

// FailedItem builds a failed BulkItem with a store-style {"type","reason"} payload.
func FailedItem(a BulkAction, status int, kind, reason string) BulkItem {
	return BulkItem{
		ID:     a.ID,
		Index:  a.Index,
		Status: status,
		Error:  map[string]any{"type": kind, "reason": reason},
	}
}
