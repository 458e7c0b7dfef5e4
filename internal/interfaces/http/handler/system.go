package handler

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/apparel/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// healthTimeout bounds each dependency check
const healthTimeout = 2 * time.Second

// HealthCheck pings one dependency
type HealthCheck func(ctx context.Context) error

// SystemHandler serves health and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	checks    map[string]HealthCheck
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		checks:    make(map[string]HealthCheck),
	}
}

// AddCheck registers a dependency checked by Health
func (h *SystemHandler) AddCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// HealthResponse reports overall and per-dependency status
type HealthResponse struct {
	Status     string            `json:"status"`
	Name       string            `json:"name"`
	Version    string            `json:"version"`
	GoVersion  string            `json:"goVersion"`
	Uptime     string            `json:"uptime"`
	Components map[string]string `json:"components,omitempty"`
}

// Health answers GET /health: 200 when every dependency responds, 503 otherwise
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) > 0 {
		resp.Components = make(map[string]string, len(names))
	}
	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		err := h.checks[name](ctx)
		cancel()
		if err != nil {
			resp.Status = "degraded"
			resp.Components[name] = "down"
			continue
		}
		resp.Components[name] = "up"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, dto.NewSuccessResponse(resp))
}
