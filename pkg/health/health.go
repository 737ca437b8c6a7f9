// Package health reports liveness and readiness of a netbuilder server.
package health

import (
	"sync"
	"time"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check is the outcome of one probe.
type Check struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	Duration    time.Duration  `json:"duration_ns"`
}

// CheckFunc performs a probe.
type CheckFunc func() Check

// Response is the aggregate of a set of checks.
type Response struct {
	Status    Status           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version,omitempty"`
}

// Checker holds the registered checks. Readiness checks decide whether the
// server should receive traffic; liveness checks whether it should be
// restarted.
type Checker struct {
	mu          sync.RWMutex
	checks      map[string]CheckFunc
	readyChecks map[string]CheckFunc
	liveChecks  map[string]CheckFunc
	started     time.Time
	version     string
	now         func() time.Time
}

// NewChecker creates a checker reporting version and the uptime since now.
func NewChecker(version string) *Checker {
	return &Checker{
		checks:      make(map[string]CheckFunc),
		readyChecks: make(map[string]CheckFunc),
		liveChecks:  make(map[string]CheckFunc),
		started:     time.Now(),
		version:     version,
		now:         time.Now,
	}
}

// RegisterCheck registers a check reported by /health.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// RegisterReadinessCheck registers a check reported by /health/ready.
func (c *Checker) RegisterReadinessCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readyChecks[name] = check
}

// RegisterLivenessCheck registers a check reported by /health/live.
func (c *Checker) RegisterLivenessCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.liveChecks[name] = check
}

// Check runs every general check.
func (c *Checker) Check() Response {
	return c.run(func() map[string]CheckFunc { return c.checks })
}

// CheckReadiness runs the readiness checks.
func (c *Checker) CheckReadiness() Response {
	return c.run(func() map[string]CheckFunc { return c.readyChecks })
}

// CheckLiveness runs the liveness checks.
func (c *Checker) CheckLiveness() Response {
	return c.run(func() map[string]CheckFunc { return c.liveChecks })
}

func (c *Checker) run(pick func() map[string]CheckFunc) Response {
	c.mu.RLock()
	funcs := make(map[string]CheckFunc, len(pick()))
	for name, fn := range pick() {
		funcs[name] = fn
	}
	c.mu.RUnlock()

	now := c.now()
	response := Response{
		Status:    StatusHealthy,
		Timestamp: now,
		Checks:    make(map[string]Check, len(funcs)),
		Uptime:    now.Sub(c.started).Round(time.Second).String(),
		Version:   c.version,
	}

	for name, fn := range funcs {
		start := time.Now()
		check := fn()
		check.Duration = time.Since(start)
		check.LastChecked = start
		if check.Name == "" {
			check.Name = name
		}
		response.Checks[name] = check
		response.Status = worst(response.Status, check.Status)
	}
	return response
}

func worst(a, b Status) Status {
	if a == StatusUnhealthy || b == StatusUnhealthy {
		return StatusUnhealthy
	}
	if a == StatusDegraded || b == StatusDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}
