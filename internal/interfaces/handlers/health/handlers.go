package health

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Pinger abstracts a DB liveness check (GORM's sql.DB in production).
type Pinger interface {
	Ping() error
}

// Handlers serves liveness info.
type Handlers struct {
	DB  Pinger
	Rdb *redis.Client
}

// JSON GET /health/json — component status snapshot.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	status := fiber.Map{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}

	dbStatus := "not configured"
	if h.DB != nil {
		dbStatus = "ok"
		if err := h.DB.Ping(); err != nil {
			dbStatus = "down"
			status["status"] = "degraded"
		}
	}
	status["db"] = dbStatus

	redisStatus := "not configured"
	if h.Rdb != nil {
		redisStatus = "ok"
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := h.Rdb.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
			status["status"] = "degraded"
		}
	}
	status["redis"] = redisStatus

	return c.JSON(status)
}
