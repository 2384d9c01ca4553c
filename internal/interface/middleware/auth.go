package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-service/internal/domain/entity"
	repo "github.com/oksasatya/user-service/internal/domain/repository"
	"github.com/oksasatya/user-service/pkg/response"
)

// Gin context keys set by Auth.
const (
	CtxUserIDKey   = "userID"
	CtxUsernameKey = "username"
	CtxRolesKey    = "roles"
)

// TokenVerifier is the read side of the token issuer.
type TokenVerifier interface {
	Verify(token string) bool
	Subject(token string) (string, error)
}

// UserLookup loads the principal named by a token.
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
}

// Auth accepts `Authorization: Bearer <token>`. The token must verify, its
// subject must name an active user, and that user's stored roles become
// the request's roles.
func Auth(tokens TokenVerifier, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		username, err := tokens.Subject(token)
		if err != nil || username == "" || !tokens.Verify(token) {
			response.Abort(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		u, err := users.FindByUsername(c.Request.Context(), username)
		if errors.Is(err, repo.ErrNotFound) {
			response.Abort(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}
		if err != nil {
			response.Abort(c, http.StatusInternalServerError, "failed to load principal", nil)
			return
		}
		if !u.Active {
			response.Abort(c, http.StatusUnauthorized, "account disabled", nil)
			return
		}

		c.Set(CtxUserIDKey, u.ID)
		c.Set(CtxUsernameKey, u.Username)
		c.Set(CtxRolesKey, u.Roles)
		c.Next()
	}
}

// RequireRole rejects principals that lack role. It must run after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, _ := c.Get(CtxRolesKey)
		names, _ := roles.([]string)
		if !slices.Contains(names, role) {
			response.Abort(c, http.StatusForbidden, "insufficient role", nil)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
