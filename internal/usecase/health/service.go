package health

import (
	"context"

	"github.com/kailas-cloud/docflow/internal/db"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	store StoreProber
}

// New creates a Service.
func New(store StoreProber) *Service {
	return &Service{store: store}
}

// Check probes the read and write handles. One failing handle degrades the report;
// both failing make it unhealthy.
func (s *Service) Check(ctx context.Context) Report {
	probes := s.store.HealthCheck(ctx)
	checks := make(map[string]CheckResult, 2)
	failed := 0

	for _, role := range []db.Role{db.RoleRead, db.RoleWrite} {
		if probes[role] {
			checks[string(role)] = CheckOK
			continue
		}
		checks[string(role)] = CheckError
		failed++
	}

	status := Degraded
	switch failed {
	case 0:
		status = Healthy
	case len(checks):
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}
