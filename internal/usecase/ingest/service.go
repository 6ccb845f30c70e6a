package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docflow/internal/db"
	"github.com/kailas-cloud/docflow/internal/domain/bulk"
	domdoc "github.com/kailas-cloud/docflow/internal/domain/document"
	"github.com/kailas-cloud/docflow/internal/metrics"
)

// Service ingests arbitrary JSON documents into caller-chosen indices.
type Service struct {
	docs      DocumentWriter
	bulkDocs  BulkWriter
	policy    domdoc.IDPolicy
	chunkSize int
	logger    *zap.Logger
}

// New creates an ingest service that reads ids from "_id" and strips them.
func New(docs DocumentWriter, bulkDocs BulkWriter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		docs:      docs,
		bulkDocs:  bulkDocs,
		policy:    domdoc.IngestPolicy(),
		chunkSize: db.DefaultChunkSize,
		logger:    logger,
	}
}

// WithChunkSize configures the default number of documents per bulk request.
func (s *Service) WithChunkSize(n int) *Service {
	if n > 0 {
		s.chunkSize = n
	}
	return s
}

// WithIDPolicy configures how write ids are read from documents.
func (s *Service) WithIDPolicy(p domdoc.IDPolicy) *Service {
	s.policy = p
	return s
}

// InsertOne writes a single document and returns the store acknowledgement.
func (s *Service) InsertOne(ctx context.Context, index string, doc map[string]any) (domdoc.InsertResult, error) {
	id, src := s.policy.Apply(doc)
	res, err := s.docs.Insert(ctx, index, id, src)
	if err != nil {
		return domdoc.InsertResult{}, fmt.Errorf("insert: %w", err)
	}
	s.logger.Info("doc inserted",
		zap.String("index", res.Index),
		zap.String("id", res.ID),
		zap.Int64("version", res.Version),
		zap.String("result", res.Result),
	)
	return res, nil
}

// BulkInsert writes docs in chunks and reports every rejected document. chunkSize <= 0
// uses the configured default. Rejections never abort the batch.
func (s *Service) BulkInsert(
	ctx context.Context, index string, docs []map[string]any, chunkSize int,
) (bulk.Outcome, error) {
	if chunkSize <= 0 {
		chunkSize = s.chunkSize
	}

	out, err := s.bulkDocs.Bulk(ctx, index, docs, s.policy, chunkSize)
	if err != nil {
		return bulk.Outcome{}, fmt.Errorf("bulk insert: %w", err)
	}

	metrics.BulkItemsTotal.WithLabelValues(index, "success").Add(float64(out.Summary.Inserted))
	metrics.BulkItemsTotal.WithLabelValues(index, "failure").Add(float64(out.Summary.Failed))

	fields := []zap.Field{
		zap.String("index", index),
		zap.Int("submitted", len(docs)),
		zap.Int("inserted", out.Summary.Inserted),
		zap.Int("failed", out.Summary.Failed),
		zap.Int("chunk_size", chunkSize),
	}
	if out.Summary.Failed > 0 {
		s.logger.Warn("bulk docs processed with failures",
			append(fields, zap.String("first_error", out.Errors[0].Reason))...)
	} else {
		s.logger.Info("bulk docs processed", fields...)
	}
	return out, nil
}
