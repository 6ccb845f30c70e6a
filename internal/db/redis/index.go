package redis

import (
	"context"

	"github.com/kailas-cloud/docflow/internal/db"
)

// EnsureIndex creates the FT index for def over <prefix><name>: JSON keys and records the
// schema for query compilation. An existing index is left as is.
func (s *Store) EnsureIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	s.mu.Lock()
	s.schemas[def.Name] = def
	s.mu.Unlock()

	cmd := s.b().Arbitrary("FT.CREATE").Args(s.buildCreateArgs(def)...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

func (s *Store) buildCreateArgs(def *db.IndexDefinition) []string {
	args := []string{
		s.ftName(def.Name),
		"ON", "JSON",
		"PREFIX", "1", s.prefix + def.Name + ":",
		"SCHEMA",
	}
	for i := range def.Fields {
		args = append(args, buildFieldArgs(&def.Fields[i])...)
	}
	return args
}

func buildFieldArgs(f *db.IndexField) []string {
	args := []string{f.JSONPath(), "AS", f.Name, f.Type.String()}
	if f.Sortable {
		args = append(args, "SORTABLE")
	}
	return args
}
