package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/timmy/jobpilot/internal/config"
	"github.com/timmy/jobpilot/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, logger.GetRequestID(c.Request.Context()))
	})
	return r
}

func TestLoggerMiddleware_SetsRequestID(t *testing.T) {
	r := newEngine(LoggerMiddleware(logger.GetDefault()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String(), "request id reaches the handler context")
}

func TestLoggerMiddleware_KeepsClientRequestID(t *testing.T) {
	r := newEngine(LoggerMiddleware(nil, "/ping"))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-123", w.Body.String())
}

func TestCORS(t *testing.T) {
	restricted := NewCORSConfig(config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}})

	tests := []struct {
		name       string
		cfg        CORSConfig
		origin     string
		method     string
		wantOrigin string
		wantStatus int
	}{
		{"allowed origin", restricted, "http://localhost:3000", http.MethodGet, "http://localhost:3000", http.StatusOK},
		{"case-insensitive", restricted, "HTTP://LOCALHOST:3000", http.MethodGet, "HTTP://LOCALHOST:3000", http.StatusOK},
		{"foreign origin", restricted, "https://evil.example", http.MethodGet, "", http.StatusOK},
		{"wildcard by default", NewCORSConfig(config.CORSConfig{}), "https://any.example", http.MethodGet, "*", http.StatusOK},
		{"preflight", restricted, "http://localhost:3000", http.MethodOptions, "http://localhost:3000", http.StatusNoContent},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := newEngine(CORS(tc.cfg))
			r.OPTIONS("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(tc.method, "/ping", nil)
			req.Header.Set("Origin", tc.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
