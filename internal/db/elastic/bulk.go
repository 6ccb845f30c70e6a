package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"iter"

	"github.com/kailas-cloud/docflow/internal/db"
)

// Bulk writes actions in chunks of chunkSize, one _bulk request per chunk.
// A chunk that fails as a whole is reported as failed items and the stream continues.
func (s *Store) Bulk(ctx context.Context, actions iter.Seq[db.BulkAction], chunkSize int) iter.Seq2[db.BulkItem, error] {
	return db.Chunked(ctx, actions, chunkSize, s.writeChunk)
}

type bulkResponse struct {
	Items []map[string]bulkResponseItem `json:"items"`
}

type bulkResponseItem struct {
	Index  string          `json:"_index"`
	ID     string          `json:"_id"`
	Status int             `json:"status"`
	Error  json.RawMessage `json:"error,omitempty"`
}

// writeChunk sends one _bulk request and returns one item per action, in order.
func (s *Store) writeChunk(ctx context.Context, chunk []db.BulkAction) []db.BulkItem {
	items := make([]db.BulkItem, len(chunk))
	sent := make([]int, 0, len(chunk))

	var buf bytes.Buffer
	for i, a := range chunk {
		line, err := encodeAction(a)
		if err != nil {
			items[i] = db.FailedItem(a, 0, "serialization_error", err.Error())
			continue
		}
		buf.Write(line)
		sent = append(sent, i)
	}
	if len(sent) == 0 {
		return items
	}

	fail := func(kind, reason string) []db.BulkItem {
		for _, i := range sent {
			items[i] = db.FailedItem(chunk[i], 0, kind, reason)
		}
		return items
	}

	res, err := s.client.Bulk(bytes.NewReader(buf.Bytes()), s.client.Bulk.WithContext(ctx))
	if err != nil {
		return fail("transport_error", err.Error())
	}

	var out bulkResponse
	if err := readResponse(db.OpBulk, res, &out); err != nil {
		return fail("bulk_rejected", err.Error())
	}

	for n, i := range sent {
		if n >= len(out.Items) {
			items[i] = db.FailedItem(chunk[i], 0, "missing_result", "no result reported for this item")
			continue
		}
		items[i] = toBulkItem(chunk[i], out.Items[n])
	}
	return items
}

// encodeAction renders the NDJSON action and source lines of one entry.
func encodeAction(a db.BulkAction) ([]byte, error) {
	op := a.Op
	if op == "" {
		op = db.BulkOpIndex
	}
	meta := map[string]any{"_index": a.Index}
	if a.ID != "" {
		meta["_id"] = a.ID
	}

	header, err := json.Marshal(map[string]any{string(op): meta})
	if err != nil {
		return nil, err
	}
	source, err := json.Marshal(a.Source)
	if err != nil {
		return nil, err
	}

	line := make([]byte, 0, len(header)+len(source)+2)
	line = append(line, header...)
	line = append(line, '\n')
	line = append(line, source...)
	line = append(line, '\n')
	return line, nil
}

func toBulkItem(a db.BulkAction, raw map[string]bulkResponseItem) db.BulkItem {
	var r bulkResponseItem
	for _, v := range raw {
		r = v
	}

	item := db.BulkItem{
		OK:     r.Status >= 200 && r.Status < 300,
		ID:     r.ID,
		Index:  r.Index,
		Status: r.Status,
	}
	if item.ID == "" {
		item.ID = a.ID
	}
	if item.Index == "" {
		item.Index = a.Index
	}
	if len(r.Error) > 0 {
		var e any
		dec := json.NewDecoder(bytes.NewReader(r.Error))
		dec.UseNumber()
		if dec.Decode(&e) == nil {
			item.Error = e
		}
	}
	return item
}
