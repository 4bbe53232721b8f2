package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Checker is a function that checks the health of a dependency.
type Checker func(ctx context.Context) error

// Status represents the health status of a component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Report is the result of running every registered check.
type Report struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the result of a single health check.
type CheckResult struct {
	Status   Status        `json:"status"`
	Critical bool          `json:"critical"`
	Latency  time.Duration `json:"latency"`
	Error    string        `json:"error,omitempty"`
}

type entry struct {
	checker  Checker
	critical bool
}

// Registry holds named dependency checks.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	timeout time.Duration
}

// NewRegistry creates a registry whose checks share the given timeout.
func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{
		entries: make(map[string]entry),
		timeout: timeout,
	}
}

// RegisterCritical adds a check whose failure makes the overall status down.
func (r *Registry) RegisterCritical(name string, checker Checker) {
	r.register(name, checker, true)
}

// RegisterNonCritical adds a check whose failure only degrades the overall status.
func (r *Registry) RegisterNonCritical(name string, checker Checker) {
	r.register(name, checker, false)
}

func (r *Registry) register(name string, checker Checker, critical bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = entry{checker: checker, critical: critical}
}

// Names returns the registered check names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes every check concurrently and aggregates the results.
func (r *Registry) Run(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	r.mu.RLock()
	entries := make(map[string]entry, len(r.entries))
	for k, v := range r.entries {
		entries[k] = v
	}
	r.mu.RUnlock()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]CheckResult, len(entries))
	)
	for name, e := range entries {
		wg.Add(1)
		go func(name string, e entry) {
			defer wg.Done()
			start := time.Now()
			err := e.checker(ctx)
			res := CheckResult{Status: StatusUp, Critical: e.critical, Latency: time.Since(start)}
			if err != nil {
				res.Status = StatusDown
				res.Error = err.Error()
			}
			mu.Lock()
			checks[name] = res
			mu.Unlock()
		}(name, e)
	}
	wg.Wait()

	overall := StatusUp
	for _, res := range checks {
		if res.Status != StatusDown {
			continue
		}
		if res.Critical {
			overall = StatusDown
			break
		}
		overall = StatusDegraded
	}

	return Report{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}
}
