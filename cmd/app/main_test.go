package main

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"okurmen-backend/internal/config"
	"okurmen-backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

func loginStatuses(t *testing.T, cfg *config.APIConfig, remoteAddr string, forwarded []string) []int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r, err := newEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	limiter := middleware.NewRateLimiter(1, 1)
	r.POST("/api/auth/login", limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	var got []int
	for _, xff := range forwarded {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = remoteAddr
		req.Header.Set("X-Forwarded-For", xff)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		got = append(got, w.Code)
	}
	return got
}

func TestLoginLimitIgnoresForwardedForByDefault(t *testing.T) {
	cfg := config.Default()
	forwarded := []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"}

	got := loginStatuses(t, cfg, "203.0.113.7:40000", forwarded)
	want := []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("statuses = %v, want %v", got, want)
	}
}

func TestLoginLimitUsesForwardedForFromTrustedProxy(t *testing.T) {
	cfg := config.Default()
	cfg.Context.TrustedProxies = "10.0.0.1"
	forwarded := []string{"1.1.1.1", "2.2.2.2", "1.1.1.1"}

	got := loginStatuses(t, cfg, "10.0.0.1:40000", forwarded)
	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("statuses = %v, want %v", got, want)
	}
}

func TestNewEngineRejectsBadProxy(t *testing.T) {
	cfg := config.Default()
	cfg.Context.TrustedProxies = "not-an-ip"
	if _, err := newEngine(cfg); err == nil {
		t.Fatal("invalid trusted proxy accepted")
	}
}
