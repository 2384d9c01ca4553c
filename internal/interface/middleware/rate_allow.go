package middleware

import (
	"net"
	"slices"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses the limiter for loopback and RFC 1918 clients,
// e.g. an in-cluster metrics scraper.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// AllowRole bypasses the limiter for authenticated principals holding role.
func AllowRole(role string) AllowFunc {
	return func(c *gin.Context) bool {
		roles, _ := c.Get(CtxRolesKey)
		names, _ := roles.([]string)
		return slices.Contains(names, role)
	}
}
