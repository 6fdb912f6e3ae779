package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// CheckFunc probes one backing store. It returns nil when the store is
// reachable.
type CheckFunc func(ctx context.Context) error

// Component statuses reported in check results and aggregate status.
const (
	StatusOK        = "ok"
	StatusReady     = "ready"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// CheckResult is the outcome of probing a single store.
type CheckResult struct {
	// Status is "ok" or "unhealthy".
	Status string `json:"status"`

	// Message carries the probe error for unhealthy stores.
	Message string `json:"message,omitempty"`

	// DurationMS is how long the probe took.
	DurationMS float64 `json:"duration_ms,omitempty"`
}

// Status is the aggregate health of the process.
type Status struct {
	// Status is "ok", "ready", or "degraded".
	Status string `json:"status"`

	// Checks holds per-store results on readiness responses.
	Checks map[string]CheckResult `json:"checks,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Checker probes the stores the engine depends on. A process that is
// alive but cannot reach its audit store is not ready: every evaluation
// would fail closed, so readiness should gate traffic.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	timeout time.Duration
}

// New creates a checker with the given per-probe timeout (default 5s).
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout == 0 {
		checkTimeout = 5 * time.Second
	}
	return &Checker{
		checks:  make(map[string]CheckFunc),
		timeout: checkTimeout,
	}
}

// RegisterCheck adds or replaces the probe for a named store.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// UnregisterCheck removes the probe for a named store.
func (c *Checker) UnregisterCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// CheckLiveness reports the process as alive without touching any
// store.
func (c *Checker) CheckLiveness(ctx context.Context) Status {
	return Status{Status: StatusOK, Timestamp: time.Now()}
}

// CheckReadiness probes every registered store concurrently and
// aggregates the results: one unreachable store degrades the whole
// process. With nothing registered the process is trivially ready.
func (c *Checker) CheckReadiness(ctx context.Context) Status {
	type namedResult struct {
		name   string
		result CheckResult
	}

	c.mu.RLock()
	pending := make([]string, 0, len(c.checks))
	funcs := make([]CheckFunc, 0, len(c.checks))
	for name, check := range c.checks {
		pending = append(pending, name)
		funcs = append(funcs, check)
	}
	c.mu.RUnlock()

	status := Status{
		Status:    StatusReady,
		Checks:    make(map[string]CheckResult, len(pending)),
		Timestamp: time.Now(),
	}
	if len(pending) == 0 {
		return status
	}

	resultCh := make(chan namedResult, len(pending))
	for i, name := range pending {
		go func(name string, check CheckFunc) {
			resultCh <- namedResult{name: name, result: c.probe(ctx, check)}
		}(name, funcs[i])
	}

	for range pending {
		r := <-resultCh
		status.Checks[r.name] = r.result
		if r.result.Status == StatusUnhealthy {
			status.Status = StatusDegraded
		}
	}
	return status
}

// probe runs one check under the per-probe timeout. The check runs in
// its own goroutine so a wedged store cannot hold the probe past the
// deadline.
func (c *Checker) probe(ctx context.Context, check CheckFunc) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	errCh := make(chan error, 1)
	go func() { errCh <- check(ctx) }()

	var result CheckResult
	select {
	case err := <-errCh:
		if err != nil {
			result = CheckResult{Status: StatusUnhealthy, Message: err.Error()}
		} else {
			result = CheckResult{Status: StatusOK}
		}
	case <-ctx.Done():
		result = CheckResult{Status: StatusUnhealthy, Message: "health check timeout"}
	}

	result.DurationMS = float64(time.Since(start).Nanoseconds()) / 1e6
	return result
}

// ListChecks returns the registered store names, sorted.
func (c *Checker) ListChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckCount returns the number of registered probes.
func (c *Checker) CheckCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.checks)
}
