package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/user-service/internal/interface/http"
	"github.com/oksasatya/user-service/internal/interface/middleware"
)

// AuthModule serves the public registration and login endpoints.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Limiter *middleware.RateLimiter
}

func NewAuthModule(h *handlers.AuthHandler, limiter *middleware.RateLimiter) *AuthModule {
	return &AuthModule{Handler: h, Limiter: limiter}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := m.Limiter.Limit(5, time.Minute, middleware.KeyByIPAndPath(), nil) // 5 req/min per IP
	loginLimiter := m.Limiter.Limit(10, time.Minute, middleware.KeyByIP(), nil)          // 10 req/min per IP

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
}
