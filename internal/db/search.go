package db

import "github.com/kailas-cloud/docflow/internal/db/query"

// SearchRequest is the input of a search.
type SearchRequest struct {
	Index string
	Query query.Query // nil = match all
	Sort  []query.SortField
	From  int
	Size  int // 0 = store default
}

// SearchResult is the output of a search.
type SearchResult struct {
	Total int
	Hits  []Hit
}

// Hit is a single stored document.
type Hit struct {
	ID     string
	Index  string
	Score  *float64 // nil when the store did not score (sorted queries)
	Source map[string]any
}

// IndexResult is the store acknowledgement for a single write.
type IndexResult struct {
	ID      string
	Index   string
	Version int64
	Result  string // "created" | "updated"
}

// BulkOp is the bulk operation type.
type BulkOp string

// Bulk operation types.
const (
	BulkOpIndex BulkOp = "index"
)

// BulkAction is one entry submitted to Bulk.
type BulkAction struct {
	Op     BulkOp
	Index  string
	ID     string // "" = store-assigned
	Source map[string]any
}

// BulkItem is the store result for one BulkAction.
type BulkItem struct {
	OK     bool
	ID     string
	Index  string
	Status int
	// Error is the raw failure payload as reported by the store: usually a map with
	// "type", "reason" and "caused_by", but drivers may report any JSON-like value.
	Error any
}
