package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/campuslane/learning-service/internal/observability"
	"github.com/campuslane/learning-service/internal/persistence"
)

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	startedAt   time.Time
	postgres    Pinger
	redis       Pinger
	metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres, redis Pinger, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		startedAt:   time.Now(),
		postgres:    postgres,
		redis:       redis,
		metrics:     metrics,
	}
}

// Live handles GET /api/health.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "OK",
		"service":   h.serviceName,
		"version":   h.version,
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startedAt).Seconds(),
	})
}

// Ready handles GET /api/health/ready by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	postgres, postgresUp := probe(ctx, h.postgres, persistence.ErrPostgresNotConfigured, "memory")
	redis, redisUp := probe(ctx, h.redis, persistence.ErrRedisNotConfigured, "disabled")
	ready := postgresUp && redisUp
	depStatus := fiber.Map{"postgres": postgres, "redis": redis}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"message":      "One or more dependencies unavailable",
		"code":         "DEPENDENCY_UNAVAILABLE",
		"dependencies": depStatus,
	})
}

// probe reports a dependency's status. An unconfigured dependency is not a failure.
func probe(ctx context.Context, p Pinger, notConfigured error, fallback string) (string, bool) {
	switch err := p.Ping(ctx); {
	case errors.Is(err, notConfigured):
		return fallback, true
	case err != nil:
		return err.Error(), false
	default:
		return "ok", true
	}
}

// Metrics handles GET /api/metrics.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(h.metrics.Snapshot())
}
