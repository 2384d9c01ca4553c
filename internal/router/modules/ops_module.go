package modules

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-service/internal/interface/middleware"
	"github.com/oksasatya/user-service/pkg/response"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// OpsModule serves liveness and, when Metrics is set, the Prometheus
// scrape endpoint.
type OpsModule struct {
	Limiter *middleware.RateLimiter
	Checks  map[string]Check
	Metrics http.Handler
}

func NewOpsModule(limiter *middleware.RateLimiter, checks map[string]Check) *OpsModule {
	return &OpsModule{Limiter: limiter, Checks: checks}
}

func (m *OpsModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.health)
	if m.Metrics != nil {
		// Public metrics endpoint, rate-limited per IP unless scraped in-cluster
		rl := m.Limiter.Limit(120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
		rg.GET("/metrics", rl, gin.WrapH(m.Metrics))
	}
}

func (m *OpsModule) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := make(map[string]string, len(m.Checks))
	healthy := true
	for name, check := range m.Checks {
		if err := check(ctx); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	if !healthy {
		response.Error[any](c, http.StatusServiceUnavailable, "unhealthy", status)
		return
	}
	response.Success(c, http.StatusOK, status, "healthy", nil)
}
