package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	t.Run("allows the burst then blocks", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute, 0)
		defer limiter.Stop()

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("client1"), "request %d should be allowed", i+1)
		}
		assert.False(t, limiter.Allow("client1"))
	})

	t.Run("separate buckets per client", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute, 0)
		defer limiter.Stop()

		assert.True(t, limiter.Allow("clientA"))
		assert.False(t, limiter.Allow("clientA"))
		assert.True(t, limiter.Allow("clientB"))
	})

	t.Run("refills over the window", func(t *testing.T) {
		limiter := NewRateLimiter(2, 100*time.Millisecond, 0)
		defer limiter.Stop()

		assert.True(t, limiter.Allow("client3"))
		assert.True(t, limiter.Allow("client3"))
		assert.False(t, limiter.Allow("client3"))

		time.Sleep(80 * time.Millisecond)
		assert.True(t, limiter.Allow("client3"))
	})

	t.Run("remaining counts whole tokens", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Hour, 0)
		defer limiter.Stop()

		assert.Equal(t, 5, limiter.Remaining("fresh"))
		limiter.Allow("fresh")
		limiter.Allow("fresh")
		assert.Equal(t, 3, limiter.Remaining("fresh"))
	})

	t.Run("concurrent access is safe", func(t *testing.T) {
		limiter := NewRateLimiter(100, time.Hour, 0)
		defer limiter.Stop()
		var wg sync.WaitGroup
		var allowed atomic.Int32

		for i := 0; i < 150; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("concurrent-client") {
					allowed.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(100), allowed.Load())
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(2, time.Minute, 0)
	defer limiter.Stop()
	router := gin.New()
	router.Use(RequestID(), RateLimit(limiter))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Remaining"))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimitByKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(1, time.Minute, 0)
	defer limiter.Stop()

	router := gin.New()
	router.Use(RateLimitByKey(limiter, func(c *gin.Context) string { return c.GetHeader("X-User-ID") }))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	send := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-User-ID", user)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("user1"))
	assert.Equal(t, http.StatusTooManyRequests, send("user1"))
	assert.Equal(t, http.StatusOK, send("user2"))
}
