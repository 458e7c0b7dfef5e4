package logger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedEngine(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		ctx, _ := WithRequestID(c.Request.Context(), log, "req-42")
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	engine.Use(Recovery(log), GinMiddleware(log))
	return engine, recorded
}

func do(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   zapcore.Level
	}{
		{"ok", http.StatusOK, zapcore.InfoLevel},
		{"client error", http.StatusNotFound, zapcore.WarnLevel},
		{"server error", http.StatusBadGateway, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, recorded := newObservedEngine(t)
			engine.GET("/api/v1/orders/:id/status", func(c *gin.Context) { c.Status(tt.status) })

			do(engine, http.MethodGet, "/api/v1/orders/abc/status")

			entries := recorded.FilterMessage("HTTP Request").All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.want, entries[0].Level)
			fields := entries[0].ContextMap()
			assert.Equal(t, "req-42", fields["request_id"])
			assert.Equal(t, "/api/v1/orders/:id/status", fields["route"])
			assert.EqualValues(t, tt.status, fields["status"])
		})
	}
}

func TestGinMiddleware_UserIDAfterAuth(t *testing.T) {
	engine, recorded := newObservedEngine(t)
	engine.POST("/checkout", func(c *gin.Context) {
		ctx, _ := WithUserID(c.Request.Context(), zap.NewNop(), "user-7")
		c.Request = c.Request.WithContext(ctx)
		GetGinLogger(c).Info("handler")
		c.Status(http.StatusOK)
	})

	do(engine, http.MethodPost, "/checkout")

	handler := recorded.FilterMessage("handler").All()
	require.Len(t, handler, 1)
	assert.Equal(t, "user-7", handler[0].ContextMap()["user_id"])

	access := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, access, 1)
	assert.Equal(t, "user-7", access[0].ContextMap()["user_id"])
}

func TestGinMiddleware_QuietPaths(t *testing.T) {
	engine, recorded := newObservedEngine(t)
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

	do(engine, http.MethodGet, "/health")
	assert.Zero(t, recorded.Len())

	do(engine, http.MethodGet, "/metrics")
	assert.Equal(t, 1, recorded.FilterMessage("HTTP Request").Len())
}

func TestRecovery_WritesErrorEnvelope(t *testing.T) {
	engine, recorded := newObservedEngine(t)
	engine.GET("/boom", func(c *gin.Context) { panic("nil configuration") })

	w := do(engine, http.MethodGet, "/boom")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
			Timestamp string `json:"timestamp"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.Equal(t, "req-42", body.Error.RequestID)
	assert.NotEmpty(t, body.Error.Timestamp)
	assert.Equal(t, 1, recorded.FilterMessage("Panic recovered").Len())
}

func TestGetGinLogger_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.NotNil(t, GetGinLogger(c))
}
