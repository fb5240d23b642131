package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/riverwatch/riverwatch/internal/api/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveFrom(handler http.Handler, remoteAddr, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitByIP_AllowsWithinLimit(t *testing.T) {
	handler := middleware.RateLimitByIP(middleware.PerMinute(5))(okHandler())

	for i := 0; i < 5; i++ {
		rec := serveFrom(handler, "192.168.1.1:12345", "/v1/stations")
		assert.Equal(t, http.StatusOK, rec.Code, "request %d should be allowed", i+1)
	}
}

func TestRateLimitByIP_BlocksOverLimit(t *testing.T) {
	handler := middleware.RequestID(middleware.RateLimitByIP(middleware.PerMinute(2))(okHandler()))

	testIP := "203.0.113.1:12345"
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serveFrom(handler, testIP, "/v1/stations").Code)
	}

	rec := serveFrom(handler, testIP, "/v1/stations")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	body := rec.Body.String()
	assert.Contains(t, body, "too-many-requests")
	assert.Contains(t, body, "Rate limit exceeded")
	assert.Contains(t, body, "/v1/stations")
}

func TestRateLimitByIP_DifferentIPsHaveSeparateLimits(t *testing.T) {
	handler := middleware.RateLimitByIP(middleware.PerMinute(1))(okHandler())

	assert.Equal(t, http.StatusOK, serveFrom(handler, "172.16.0.1:12345", "/").Code)
	assert.Equal(t, http.StatusTooManyRequests, serveFrom(handler, "172.16.0.1:12345", "/").Code)
	assert.Equal(t, http.StatusOK, serveFrom(handler, "172.16.0.2:12345", "/").Code)
}

func TestRateLimitByIP_RetryAfterFollowsWindow(t *testing.T) {
	handler := middleware.RateLimitByIP(middleware.RateLimitConfig{
		RequestLimit: 1,
		WindowLength: 10 * time.Second,
	})(okHandler())

	serveFrom(handler, "198.51.100.7:1", "/")
	rec := serveFrom(handler, "198.51.100.7:1", "/")

	assert.Equal(t, "10", rec.Header().Get("Retry-After"))
}

func TestPerMinute(t *testing.T) {
	cfg := middleware.PerMinute(100)
	assert.Equal(t, 100, cfg.RequestLimit)
	assert.Equal(t, time.Minute, cfg.WindowLength)
}
