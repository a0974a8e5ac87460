package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGinTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestGinRequestIDMiddleware(t *testing.T) {
	router := setupGinTestRouter()
	router.Use(GinRequestIDMiddleware())

	var fromGin, fromCtx string
	router.GET("/test", func(c *gin.Context) {
		fromGin = GetRequestIDFromGin(c)
		fromCtx = RequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		router.ServeHTTP(w, req)

		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, fromGin)
		assert.Equal(t, id, fromCtx)
	})

	t.Run("keeps client id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "req-42", fromGin)
	})

	t.Run("replaces unsafe id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "id with spaces")
		router.ServeHTTP(w, req)

		id := w.Header().Get(RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, fromCtx)
	})
}

func TestResolveRequestID(t *testing.T) {
	assert.Equal(t, "batch-7:run.1", ResolveRequestID("batch-7:run.1"))
	assert.Len(t, ResolveRequestID(""), 36)
	assert.Len(t, ResolveRequestID(strings.Repeat("a", 65)), 36)
	assert.Len(t, ResolveRequestID("x\nforged"), 36)
}

func TestLoggerCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	Logger(WithRequestID(context.Background(), "req-9"), base).Info("matching completed")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-9", entry["request_id"])

	assert.Same(t, base, Logger(context.Background(), base))
}

func TestGetRequestIDEmpty(t *testing.T) {
	assert.Empty(t, GetRequestIDFromGin(nil))
	assert.Empty(t, RequestID(nil))
}

func TestGinRecoveryMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := setupGinTestRouter()
	router.Use(GinRequestIDMiddleware(), GinRecoveryMiddleware(logger))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "req-1", body["request_id"])
	assert.Contains(t, buf.String(), "boom")
}

func TestGinLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := setupGinTestRouter()
	router.Use(GinRequestIDMiddleware(), GinLoggerMiddleware(logger))
	router.GET("/missing", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing?x=1", nil))

	line := buf.String()
	assert.Contains(t, line, `"level":"WARN"`)
	assert.Contains(t, line, `"path":"/missing?x=1"`)
	assert.Contains(t, line, `"status":404`)
}

func TestGinGzipMiddleware(t *testing.T) {
	router := setupGinTestRouter()
	router.Use(GinGzipMiddleware())
	router.GET("/data", func(c *gin.Context) {
		c.String(http.StatusOK, strings.Repeat("product ", 200))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	router.ServeHTTP(w, req)

	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}
