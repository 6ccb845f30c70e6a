package audit

import (
	"context"

	domdoc "github.com/kailas-cloud/docflow/internal/domain/document"
)

// Documents reads, archives and patches documents.
type Documents interface {
	// Get returns domain.ErrDocumentNotFound when the document does not exist.
	Get(ctx context.Context, index, id string) (domdoc.Doc, error)
	Insert(ctx context.Context, index, id string, src map[string]any) (domdoc.InsertResult, error)
	Update(ctx context.Context, index, id string, partial map[string]any) error
}
