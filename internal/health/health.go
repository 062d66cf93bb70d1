package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

type HealthCheck interface {
	Name() string
	Check(ctx context.Context) HealthResult
}

type HealthResult struct {
	Name     string        `json:"name"`
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

type HealthChecker struct {
	checks []HealthCheck
	mu     sync.RWMutex
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{checks: make([]HealthCheck, 0)}
}

func (hc *HealthChecker) Register(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks = append(hc.checks, check)
}

func (hc *HealthChecker) Check(ctx context.Context) map[string]HealthResult {
	hc.mu.RLock()
	checks := make([]HealthCheck, len(hc.checks))
	copy(checks, hc.checks)
	hc.mu.RUnlock()

	results := make(map[string]HealthResult)
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, c := range checks {
		wg.Add(1)
		go func(ch HealthCheck) {
			defer wg.Done()
			start := time.Now()
			res := ch.Check(ctx)
			res.Duration = time.Since(start)
			mu.Lock()
			results[ch.Name()] = res
			mu.Unlock()
		}(c)
	}
	wg.Wait()
	return results
}

func (hc *HealthChecker) OverallStatus(results map[string]HealthResult) HealthStatus {
	hasDegraded := false
	for _, r := range results {
		switch r.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			hasDegraded = true
		}
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

func (hc *HealthChecker) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		results := hc.Check(ctx)
		overall := hc.OverallStatus(results)
		resp := map[string]interface{}{
			"status":    overall,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"checks":    results,
		}
		w.Header().Set("Content-Type", "application/json")
		statusCode := http.StatusOK
		if overall == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(resp)
	}
}

// Pinger covers every dependency exposing a Ping method
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck wraps a dependency's Ping as a health check
type PingCheck struct {
	name     string
	pinger   Pinger
	slowLine time.Duration
}

func NewPingCheck(name string, pinger Pinger, slowLine time.Duration) *PingCheck {
	if slowLine == 0 {
		slowLine = 200 * time.Millisecond
	}
	return &PingCheck{name: name, pinger: pinger, slowLine: slowLine}
}

func (p *PingCheck) Name() string { return p.name }

func (p *PingCheck) Check(ctx context.Context) HealthResult {
	start := time.Now()
	err := p.pinger.Ping(ctx)
	duration := time.Since(start)

	res := HealthResult{Name: p.name, Duration: duration}
	switch {
	case err != nil:
		res.Status = StatusUnhealthy
		res.Message = err.Error()
	case duration > p.slowLine:
		res.Status = StatusDegraded
		res.Message = "responding slowly"
	default:
		res.Status = StatusHealthy
	}
	return res
}
