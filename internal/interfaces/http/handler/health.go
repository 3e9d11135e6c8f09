package handler

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/bizdir/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// readyTimeout bounds all dependency checks of one readiness probe
const readyTimeout = 3 * time.Second

// Check probes one dependency
type Check func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	name      string
	version   string
	startTime time.Time
	checks    map[string]Check
}

// HealthResponse is the probe payload
type HealthResponse struct {
	Status       string            `json:"status"`
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	GoVersion    string            `json:"go_version"`
	Uptime       string            `json:"uptime"`
	Time         string            `json:"time"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// NewHealthHandler creates a health handler; checks are run by the readiness probe
func NewHealthHandler(name, version string, checks map[string]Check) *HealthHandler {
	return &HealthHandler{name: name, version: version, startTime: time.Now(), checks: checks}
}

// Live godoc
// @Summary      Liveness probe
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, h.response("healthy", nil))
}

// Ready godoc
// @Summary      Readiness probe
// @Description  Checks the database and cache
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		mu     sync.Mutex
		status = make(map[string]string, len(names))
	)
	// every check runs to completion so the payload reports each dependency
	var g errgroup.Group
	for _, name := range names {
		check := h.checks[name]
		g.Go(func() error {
			err := check(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				status[name] = "error"
				return err
			}
			status[name] = "ok"
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.FromGin(c).Warn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, h.response("unhealthy", status))
		return
	}
	c.JSON(http.StatusOK, h.response("healthy", status))
}

func (h *HealthHandler) response(status string, deps map[string]string) HealthResponse {
	return HealthResponse{
		Status:       status,
		Name:         h.name,
		Version:      h.version,
		GoVersion:    runtime.Version(),
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Time:         time.Now().UTC().Format(time.RFC3339),
		Dependencies: deps,
	}
}
