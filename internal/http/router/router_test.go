package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "recycle_portal_backend/internal/http"
	"recycle_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type testRouterConfig struct{}

func (testRouterConfig) GetHTTPAddr() string        { return ":0" }
func (testRouterConfig) GetCORSAllowAll() bool      { return false }
func (testRouterConfig) GetCORSOrigins() []string   { return []string{"https://app.example.com"} }
func (testRouterConfig) GetCORSAllowCreds() bool    { return true }
func (testRouterConfig) GetJWTAccessSecret() string { return "test-secret" }

type stubHealth struct{ err error }

func (h stubHealth) Ping(context.Context) error { return h.err }

type pingModule struct{}

func (pingModule) Name() string { return "ping" }

func (pingModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	ctx.Protected.GET("/ping", ok)
	ctx.Public.GET("/ping", ok)
}

func newTestEngine(health apphttp.HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(&apphttp.App{
		Config:  testRouterConfig{},
		Logger:  logger.New("development"),
		Health:  health,
		Modules: []apphttp.Module{pingModule{}},
	})
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "192.0.2.10:1234"
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealthReflectsDatabase(t *testing.T) {
	if rec := serve(newTestEngine(stubHealth{}), http.MethodGet, "/api/health"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := serve(newTestEngine(stubHealth{err: errors.New("down")}), http.MethodGet, "/api/health"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestModuleRoutesAreMountedBehindTheRightGroups(t *testing.T) {
	engine := newTestEngine(stubHealth{})

	if rec := serve(engine, http.MethodGet, "/api/v1/ping"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("protected route without token: expected 401, got %d", rec.Code)
	}
	if rec := serve(engine, http.MethodGet, "/api/v1/public/ping"); rec.Code != http.StatusNoContent {
		t.Fatalf("public route: expected 204, got %d", rec.Code)
	}
}

func TestSecurityHeadersAreSet(t *testing.T) {
	rec := serve(newTestEngine(stubHealth{}), http.MethodGet, "/api/health")
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected nosniff header, got %q", rec.Header().Get("X-Content-Type-Options"))
	}
}
