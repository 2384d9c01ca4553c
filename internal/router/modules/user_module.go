package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/user-service/internal/interface/http"
	"github.com/oksasatya/user-service/internal/interface/middleware"
)

// UserModule wires the user directory routes.
// Reads need any authenticated principal; writes need AdminRole.
type UserModule struct {
	Handler   *handlers.UserHandler
	Auth      gin.HandlerFunc
	Limiter   *middleware.RateLimiter
	AdminRole string
}

func NewUserModule(h *handlers.UserHandler, auth gin.HandlerFunc, limiter *middleware.RateLimiter, adminRole string) *UserModule {
	return &UserModule{Handler: h, Auth: auth, Limiter: limiter, AdminRole: adminRole}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(m.Auth)
	users.Use(m.Limiter.Limit(120, time.Minute, middleware.KeyByUserID(), middleware.AllowRole(m.AdminRole)))

	users.GET("", m.Handler.List)
	users.GET("/search", m.Handler.Search)
	users.GET("/username/:username", m.Handler.GetByUsername)
	users.GET("/:id", m.Handler.GetByID)
	users.GET("/:id/exists", m.Handler.Exists)

	admin := users.Group("")
	admin.Use(middleware.RequireRole(m.AdminRole))
	{
		admin.POST("", m.Handler.Create)
		admin.PUT("/:id", m.Handler.Update)
		admin.DELETE("/:id", m.Handler.Delete)
	}
}
