package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	statusUp     = "up"
	statusDown   = "down"
	readyTimeout = 2 * time.Second
)

type DatabasePinger interface {
	Ping(ctx context.Context) error
}

type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// DedupStats exposes the in-process dedup cache size.
type DedupStats interface {
	Len() int
}

type HealthHandler struct {
	db      DatabasePinger
	redis   RedisPinger
	dedup   DedupStats
	version string
}

type HealthResponse struct {
	Status   string           `json:"status"`
	Checks   map[string]Check `json:"checks"`
	Metadata Metadata         `json:"metadata"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type Metadata struct {
	Version      string `json:"version"`
	Timestamp    string `json:"timestamp"`
	DedupEntries int    `json:"dedup_entries"`
}

func NewHealthHandler(db DatabasePinger, redis RedisPinger, dedup DedupStats, version string) *HealthHandler {
	return &HealthHandler{
		db:      db,
		redis:   redis,
		dedup:   dedup,
		version: version,
	}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Readyz probes every backing store. Any probe failing marks the service
// down with a 503.
func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	probes := map[string]func(context.Context) error{
		"database": h.db.Ping,
		"redis":    func(ctx context.Context) error { return h.redis.Ping(ctx).Err() },
	}

	resp := HealthResponse{
		Status: statusUp,
		Checks: make(map[string]Check, len(probes)),
		Metadata: Metadata{
			Version:      h.version,
			Timestamp:    time.Now().Format(time.RFC3339),
			DedupEntries: h.dedup.Len(),
		},
	}

	for name, probe := range probes {
		check := runProbe(ctx, probe)
		if check.Status != statusUp {
			resp.Status = statusDown
		}
		resp.Checks[name] = check
	}

	if resp.Status != statusUp {
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func runProbe(ctx context.Context, probe func(context.Context) error) Check {
	if err := probe(ctx); err != nil {
		return Check{Status: statusDown, Message: err.Error()}
	}
	return Check{Status: statusUp, Message: "connected"}
}
