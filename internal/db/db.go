package db

import (
	"context"
	"iter"
)

// Store is the document store facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	InfoProvider
	DocumentReader
	Searcher
	DocumentWriter
	BulkWriter
	Close()
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ClusterInfo describes the store a handle is connected to.
type ClusterInfo struct {
	Name    string
	Version string
}

// InfoProvider reports cluster metadata for diagnostics.
type InfoProvider interface {
	Info(ctx context.Context) (ClusterInfo, error)
}

// DocumentReader fetches single documents.
type DocumentReader interface {
	// Get returns ErrDocumentNotFound when the document does not exist.
	Get(ctx context.Context, index, id string) (Hit, error)
}

// Searcher runs queries.
type Searcher interface {
	Search(ctx context.Context, req *SearchRequest) (*SearchResult, error)
}

// DocumentWriter creates and partially updates documents.
type DocumentWriter interface {
	// Index writes doc under id; an empty id lets the store assign one.
	Index(ctx context.Context, index, id string, doc map[string]any) (IndexResult, error)
	// Update merges partial into the top level of an existing document.
	Update(ctx context.Context, index, id string, partial map[string]any) error
}

// BulkWriter streams chunked bulk writes.
type BulkWriter interface {
	// Bulk consumes actions lazily, writes them chunkSize at a time and yields one item per
	// action in submission order. Per-item failures are items with OK=false; a non-nil
	// error is only yielded when ctx is done or the handle is unavailable, and ends the stream.
	Bulk(ctx context.Context, actions iter.Seq[BulkAction], chunkSize int) iter.Seq2[BulkItem, error]
}

// IndexManager creates store-side index definitions. Optional: only drivers that need an
// explicit schema implement it.
type IndexManager interface {
	EnsureIndex(ctx context.Context, def *IndexDefinition) error
}
