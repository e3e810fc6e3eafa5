package health

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Status is the aggregate or per-check health state.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// CheckFunc probes one dependency. A nil return means healthy; the error
// message is reported verbatim in the readiness payload.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Report is the aggregate readiness payload.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// Checker runs registered readiness checks with a shared timeout. Checks are
// registered once at startup; RunChecks may be called concurrently.
type Checker struct {
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewChecker creates a checker with the given per-invocation timeout.
func NewChecker(timeout time.Duration) *Checker {
	return &Checker{
		timeout: timeout,
		logger:  slog.Default().With("component", "health"),
		checks:  make(map[string]CheckFunc),
	}
}

// Register adds a named check. Registering the same name twice replaces the
// earlier check.
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// RunChecks executes every registered check under the configured timeout and
// aggregates the results. The overall status is unhealthy if any single
// check fails.
func (c *Checker) RunChecks(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, fn := range c.checks {
		checks[name] = fn
	}
	c.mu.RUnlock()

	report := Report{
		Status: StatusHealthy,
		Checks: make(map[string]CheckResult, len(checks)),
	}
	for name, fn := range checks {
		if err := fn(ctx); err != nil {
			c.logger.Warn("readiness check failed", "check", name, "error", err)
			report.Checks[name] = CheckResult{Status: StatusUnhealthy, Message: err.Error()}
			report.Status = StatusUnhealthy
		} else {
			report.Checks[name] = CheckResult{Status: StatusHealthy}
		}
	}
	return report
}
