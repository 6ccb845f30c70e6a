package health

import (
	"context"

	"github.com/kailas-cloud/docflow/internal/db"
)

// StoreProber probes the document store handles independently.
type StoreProber interface {
	HealthCheck(ctx context.Context) map[db.Role]bool
}
