package docflow

import (
	"context"
	"time"
)

// HealthStatus is the aggregated store health.
type HealthStatus struct {
	Status string            // "ok", "degraded" or "error"
	Checks map[string]string // per handle: "read", "write"
}

// Healthy reports whether both handles answered.
func (h HealthStatus) Healthy() bool { return h.Status == "ok" }

// Health probes the read and write handles.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)

	out := HealthStatus{Status: string(report.Status), Checks: make(map[string]string, len(report.Checks))}
	for name, r := range report.Checks {
		out.Checks[name] = string(r)
	}

	var err error
	if !out.Healthy() {
		err = errUnhealthy{status: out.Status}
	}
	c.obs.observe("health", start, err)
	return out
}

type errUnhealthy struct{ status string }

func (e errUnhealthy) Error() string { return "store " + e.status }
