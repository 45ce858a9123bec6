package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recycle_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type testJWTConfig struct{}

func (testJWTConfig) GetJWTAccessSecret() string { return "test-secret" }

func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newAuthEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/me", AuthRequired(testJWTConfig{}), RequireRole("recycler"), func(c *gin.Context) {
		id := MustGetIdentity(c)
		if id == nil {
			return
		}
		c.JSON(http.StatusOK, gin.H{"name": id.DisplayName(), "id": id.UserID().String()})
	})
	return engine
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	rec := httptest.NewRecorder()
	newAuthEngine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRequiredAcceptsRecyclerToken(t *testing.T) {
	raw := signTestToken(t, jwt.MapClaims{
		"sub":   uuid.NewString(),
		"type":  "access",
		"roles": []string{"recycler"},
		"name":  "Sam Recycler",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	newAuthEngine().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	raw := signTestToken(t, jwt.MapClaims{
		"sub":   uuid.NewString(),
		"type":  "access",
		"roles": []string{"customer"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	newAuthEngine().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRefreshTokenTypeIsRejected(t *testing.T) {
	raw := signTestToken(t, jwt.MapClaims{
		"sub":   uuid.NewString(),
		"type":  "refresh",
		"roles": []string{"recycler"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	newAuthEngine().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewIPRateLimiter(1, 1, nil)
	limiter.now = func() time.Time { return now }

	limiter.getLimiter("198.51.100.1")
	limiter.getLimiter("198.51.100.2")

	now = now.Add(limiterIdleTTL / 2)
	limiter.getLimiter("198.51.100.2")

	now = now.Add(limiterIdleTTL/2 + time.Second)
	limiter.getLimiter("198.51.100.3")

	if _, ok := limiter.limiters["198.51.100.1"]; ok {
		t.Fatalf("expected idle client to be evicted")
	}
	if _, ok := limiter.limiters["198.51.100.2"]; !ok {
		t.Fatalf("expected recently seen client to be kept")
	}
	if len(limiter.limiters) != 2 {
		t.Fatalf("expected 2 limiters, got %d", len(limiter.limiters))
	}
}

func TestRateLimitRejectsBurstFromSameIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/t", NewIPRateLimiter(0.001, 1, nil).RateLimit(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	first := httptest.NewRecorder()
	engine.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/t", nil))
	second := httptest.NewRecorder()
	engine.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/t", nil))

	if first.Code != http.StatusNoContent || second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 204 then 429, got %d then %d", first.Code, second.Code)
	}
}

func TestRequestLoggerTagsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestLogger(logger.New("test")))
	var seen string
	engine.GET("/t", func(c *gin.Context) {
		seen, _ = c.Request.Context().Value(logger.RequestIDKey).(string)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if seen != "req-123" || rec.Header().Get(RequestIDHeader) != "req-123" {
		t.Fatalf("expected caller request id to be kept, got ctx=%q header=%q", seen, rec.Header().Get(RequestIDHeader))
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/t", nil))
	if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil || seen != rec.Header().Get(RequestIDHeader) {
		t.Fatalf("expected generated request id, got %q", rec.Header().Get(RequestIDHeader))
	}
}
