package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ignite/subscribebox/internal/pkg/httputil"
	"github.com/redis/go-redis/v9"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status  string                    `json:"status"` // "healthy", "degraded", "unhealthy"
	Version string                    `json:"version"`
	Uptime  string                    `json:"uptime"`
	Checks  map[string]ComponentCheck `json:"checks"`
}

// ComponentCheck is the health of a single dependency.
type ComponentCheck struct {
	Status  string `json:"status"` // "up", "down", "degraded"
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// BreakerReporter exposes the newsletter client's circuit breaker state.
type BreakerReporter interface {
	BreakerState() string
}

// HealthChecker reports on Redis (when configured), the newsletter
// endpoint breaker and the session registry.
type HealthChecker struct {
	redisClient *redis.Client
	breaker     BreakerReporter
	sessions    func() int
	startTime   time.Time
}

// NewHealthChecker creates a HealthChecker. Nil dependencies report "not configured".
func NewHealthChecker(redisClient *redis.Client, breaker BreakerReporter, sessions func() int) *HealthChecker {
	return &HealthChecker{
		redisClient: redisClient,
		breaker:     breaker,
		sessions:    sessions,
		startTime:   time.Now(),
	}
}

const (
	healthVersion = "1.0.0"
	notConfigured = "not configured"
)

// HandleHealth always answers 200; the status field conveys health.
//
//	GET /health
func (hc *HealthChecker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks := hc.runAllChecks(r.Context())

	httputil.OK(w, HealthStatus{
		Status:  determineOverallStatus(checks),
		Version: healthVersion,
		Uptime:  hc.uptime(),
		Checks:  checks,
	})
}

// HandleLiveness answers 200 while the process runs.
//
//	GET /health/live
func (hc *HealthChecker) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "alive", "uptime": hc.uptime()})
}

// HandleReadiness answers 503 when submissions cannot be served.
//
//	GET /health/ready
func (hc *HealthChecker) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	checks := hc.runAllChecks(r.Context())
	overall := determineOverallStatus(checks)

	code := http.StatusOK
	if overall == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	httputil.JSON(w, code, map[string]interface{}{
		"ready":  code == http.StatusOK,
		"status": overall,
		"checks": checks,
	})
}

func (hc *HealthChecker) uptime() string {
	return time.Since(hc.startTime).Truncate(time.Second).String()
}

func (hc *HealthChecker) runAllChecks(ctx context.Context) map[string]ComponentCheck {
	probes := map[string]func(context.Context) ComponentCheck{
		"redis":      hc.checkRedis,
		"newsletter": hc.checkNewsletter,
		"sessions":   hc.checkSessions,
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]ComponentCheck, len(probes))
	)
	for name, probe := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := probe(ctx)
			mu.Lock()
			checks[name] = c
			mu.Unlock()
		}()
	}
	wg.Wait()
	return checks
}

// checkRedis pings with a 2s budget; over 500ms counts as degraded.
func (hc *HealthChecker) checkRedis(ctx context.Context) ComponentCheck {
	if hc.redisClient == nil {
		return ComponentCheck{Status: "down", Message: notConfigured}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := hc.redisClient.Ping(ctx).Err()
	latency := time.Since(start)

	switch {
	case err != nil:
		return ComponentCheck{Status: "down", Latency: latency.String(), Message: fmt.Sprintf("ping failed: %v", err)}
	case latency > 500*time.Millisecond:
		return ComponentCheck{Status: "degraded", Latency: latency.String(), Message: "slow response"}
	default:
		return ComponentCheck{Status: "up", Latency: latency.String(), Message: "connected"}
	}
}

// checkNewsletter reports the endpoint breaker. An open breaker degrades
// but never fails readiness.
func (hc *HealthChecker) checkNewsletter(context.Context) ComponentCheck {
	if hc.breaker == nil {
		return ComponentCheck{Status: "down", Message: notConfigured}
	}

	switch state := hc.breaker.BreakerState(); state {
	case "open":
		return ComponentCheck{Status: "degraded", Message: "circuit breaker open"}
	case "half-open":
		return ComponentCheck{Status: "degraded", Message: "circuit breaker probing"}
	default:
		return ComponentCheck{Status: "up", Message: "breaker " + state}
	}
}

func (hc *HealthChecker) checkSessions(context.Context) ComponentCheck {
	if hc.sessions == nil {
		return ComponentCheck{Status: "down", Message: notConfigured}
	}
	return ComponentCheck{Status: "up", Message: fmt.Sprintf("%d active sessions", hc.sessions())}
}

// determineOverallStatus is "unhealthy" when a configured Redis is down
// (submit locks need it), "degraded" when anything else is degraded or
// down, and "healthy" otherwise. Unconfigured checks are ignored.
func determineOverallStatus(checks map[string]ComponentCheck) string {
	if rc := checks["redis"]; rc.Status == "down" && rc.Message != notConfigured {
		return "unhealthy"
	}

	for _, c := range checks {
		if c.Message == notConfigured {
			continue
		}
		if c.Status == "degraded" || c.Status == "down" {
			return "degraded"
		}
	}
	return "healthy"
}
