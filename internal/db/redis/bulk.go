package redis

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"

	"github.com/google/uuid"
	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docflow/internal/db"
)

// Bulk pipelines each chunk as one DoMulti round trip.
func (s *Store) Bulk(ctx context.Context, actions iter.Seq[db.BulkAction], chunkSize int) iter.Seq2[db.BulkItem, error] {
	return db.Chunked(ctx, actions, chunkSize, s.writeChunk)
}

func (s *Store) writeChunk(ctx context.Context, chunk []db.BulkAction) []db.BulkItem {
	items := make([]db.BulkItem, len(chunk))
	sent := make([]int, 0, len(chunk))
	cmds := make(rueidis.Commands, 0, 2*len(chunk))

	for i := range chunk {
		a := &chunk[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		data, err := json.Marshal(a.Source)
		if err != nil {
			items[i] = db.FailedItem(*a, 0, "serialization_error", err.Error())
			continue
		}
		cmds = append(cmds, s.writeCmds(a.Index, a.ID, data)...)
		sent = append(sent, i)
	}
	if len(sent) == 0 {
		return items
	}

	results := s.client.DoMulti(ctx, cmds...)
	for n, i := range sent {
		a := chunk[i]
		if 2*n+1 >= len(results) {
			items[i] = db.FailedItem(a, 0, "missing_result", "no result reported for this item")
			continue
		}

		version, err := writeResult(results[2*n : 2*n+2])
		if err != nil {
			kind := "transport_error"
			if _, ok := rueidis.IsRedisErr(err); ok {
				kind = "redis_error"
			}
			items[i] = db.FailedItem(a, 0, kind, err.Error())
			continue
		}

		status := http.StatusOK
		if version <= 1 {
			status = http.StatusCreated
		}
		items[i] = db.BulkItem{OK: true, ID: a.ID, Index: a.Index, Status: status}
	}
	return items
}
