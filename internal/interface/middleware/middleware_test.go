package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-service/internal/domain/entity"
	repo "github.com/oksasatya/user-service/internal/domain/repository"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeTokens map[string]string

func (f fakeTokens) Verify(token string) bool {
	_, ok := f[token]
	return ok
}

func (f fakeTokens) Subject(token string) (string, error) {
	if sub, ok := f[token]; ok {
		return sub, nil
	}
	return "", errors.New("malformed")
}

type fakeUsers map[string]*entity.User

func (f fakeUsers) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	if username == "broken" {
		return nil, errors.New("db down")
	}
	if u, ok := f[username]; ok {
		return u, nil
	}
	return nil, repo.ErrNotFound
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func authEngine() *gin.Engine {
	tokens := fakeTokens{"good": "ana", "ghost": "nobody", "off": "dora", "admin": "root", "err": "broken"}
	users := fakeUsers{
		"ana":  {ID: "u1", Username: "ana", Active: true, Roles: []string{entity.RoleUser}},
		"dora": {ID: "u2", Username: "dora", Active: false},
		"root": {ID: "u3", Username: "root", Active: true, Roles: []string{entity.RoleAdmin, entity.RoleUser}},
	}
	r := gin.New()
	g := r.Group("/", Auth(tokens, users))
	g.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetString(CtxUserIDKey), "username": c.GetString(CtxUsernameKey)})
	})
	g.GET("/admin", RequireRole(entity.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestAuth(t *testing.T) {
	r := authEngine()
	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"unverifiable token", "Bearer forged", http.StatusUnauthorized},
		{"unknown subject", "Bearer ghost", http.StatusUnauthorized},
		{"disabled account", "Bearer off", http.StatusUnauthorized},
		{"store failure", "Bearer err", http.StatusInternalServerError},
		{"valid token", "Bearer good", http.StatusOK},
		{"scheme is case-insensitive", "bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"id":"u1","username":"ana"}`, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := authEngine()
	for token, status := range map[string]int{"good": http.StatusForbidden, "admin": http.StatusNoContent} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		assert.Equal(t, status, serve(r, req).Code, token)
	}
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"cloudflare wins", map[string]string{"CF-Connecting-IP": "203.0.113.9", "X-Forwarded-For": "198.51.100.1"}, "203.0.113.9"},
		{"left-most forwarded", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}, "198.51.100.1"},
		{"garbage is skipped", map[string]string{"X-Forwarded-For": "nope", "X-Real-IP": "192.0.2.4"}, "192.0.2.4"},
		{"remote address", nil, "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(RealIP())
			r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRealIPKey)) })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.0.2.1:4321"
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, serve(r, req).Body.String())
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Header().Get(HeaderRequestID))
	require.NoError(t, err)
	assert.Equal(t, w.Header().Get(HeaderRequestID), w.Body.String())

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, incoming)
	assert.Equal(t, incoming, serve(r, req).Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "not-a-uuid")
	assert.NotEqual(t, "not-a-uuid", serve(r, req).Header().Get(HeaderRequestID))
}

type observation struct {
	route, method string
	status        int
}

type fakeObserver struct{ seen []observation }

func (f *fakeObserver) ObserveRequest(route, method string, status int, _ float64) {
	f.seen = append(f.seen, observation{route, method, status})
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	obs := &fakeObserver{}
	r := gin.New()
	r.Use(Metrics(obs))
	r.GET("/users/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/users/42", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, []observation{
		{"/users/:id", http.MethodGet, http.StatusOK},
		{"unmatched", http.MethodGet, http.StatusNotFound},
	}, obs.seen)
}

func TestRateLimiterPassThrough(t *testing.T) {
	unreachable := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = unreachable.Close() })

	limiters := map[string]*RateLimiter{
		"nil limiter":       nil,
		"nil client":        NewRateLimiter(nil, "svc:", true),
		"disabled":          NewRateLimiter(unreachable, "svc:", false),
		"redis unreachable": NewRateLimiter(unreachable, "svc:", true),
	}
	for name, l := range limiters {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", l.Limit(1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })
			for range 3 {
				assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
			}
		})
	}
}

func TestKeyFuncs(t *testing.T) {
	r := gin.New()
	var keys []string
	r.GET("/users/:id", func(c *gin.Context) {
		c.Set(CtxRealIPKey, "192.0.2.7")
		keys = append(keys, KeyByIP()(c), KeyByIPAndPath()(c), KeyByUserID()(c))
		c.Set(CtxUserIDKey, "u1")
		keys = append(keys, KeyByUserID()(c))
	})
	serve(r, httptest.NewRequest(http.MethodGet, "/users/9", nil))

	assert.Equal(t, []string{
		"rl:ip:192.0.2.7",
		"rl:path:/users/:id:ip:192.0.2.7",
		"rl:user:anon:ip:192.0.2.7",
		"rl:user:u1",
	}, keys)
}

func TestAllowFuncs(t *testing.T) {
	r := gin.New()
	var got []bool
	r.GET("/", func(c *gin.Context) {
		c.Set(CtxRealIPKey, "10.1.2.3")
		got = append(got, AllowPrivateIP()(c))
		c.Set(CtxRealIPKey, "203.0.113.5")
		got = append(got, AllowPrivateIP()(c))
		got = append(got, AllowRole(entity.RoleAdmin)(c))
		c.Set(CtxRolesKey, []string{entity.RoleAdmin})
		got = append(got, AllowRole(entity.RoleAdmin)(c))
	})
	serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []bool{true, false, false, true}, got)
}
