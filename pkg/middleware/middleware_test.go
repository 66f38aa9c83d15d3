package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lactacare/internal/auth"
	"lactacare/internal/cache"
	"lactacare/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestErrorHandler_MapsDomainErrors(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler(zap.NewNop()))
	router.GET("/full", func(c *gin.Context) {
		_ = c.Error(domain.NewCapacityExceeded("room sala-1 is full"))
	})
	router.GET("/missing", func(c *gin.Context) {
		_ = c.Error(domain.ErrContainerNotFound)
	})

	w := serve(router, http.MethodGet, "/full", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"CapacityExceeded"`)

	w = serve(router, http.MethodGet, "/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorHandler_BindErrorsAreValidationErrors(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler(zap.NewNop()))
	router.POST("/containers", func(c *gin.Context) {
		_ = c.Error(errors.New("unexpected EOF")).SetType(gin.ErrorTypeBind)
	})

	w := serve(router, http.MethodPost, "/containers", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"ValidationError"`)
}

func TestRecoveryHandler(t *testing.T) {
	router := gin.New()
	router.Use(RecoveryHandler(zap.NewNop()))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(router, http.MethodGet, "/panic", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "InternalError")
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret-key-with-at-least-32-chars", zap.NewNop())
	token, _, err := tokens.Issue("nurse")
	require.NoError(t, err)

	router := gin.New()
	router.Use(AuthMiddleware(tokens, zap.NewNop()))
	router.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UsernameContextKey))
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer garbage", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := serve(router, http.MethodGet, "/me", headers)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "nurse", w.Body.String())
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware(zap.NewNop()))
	router.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c.Request.Context()))
	})

	w := serve(router, http.MethodGet, "/id", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())

	w = serve(router, http.MethodGet, "/id", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())
}

func TestIdempotencyMiddleware_ReplaysWrites(t *testing.T) {
	store := NewCacheRequestIDStore(cache.NewInMemoryCache(zap.NewNop()))
	var calls atomic.Int32

	router := gin.New()
	router.Use(RequestIDMiddleware(zap.NewNop()), IdempotencyMiddleware(store, zap.NewNop(), time.Minute))
	router.POST("/containers", func(c *gin.Context) {
		n := calls.Add(1)
		c.JSON(http.StatusCreated, gin.H{"call": n})
	})

	headers := map[string]string{RequestIDHeader: "req-1"}
	first := serve(router, http.MethodPost, "/containers", headers)
	second := serve(router, http.MethodPost, "/containers", headers)
	other := serve(router, http.MethodPost, "/containers", map[string]string{RequestIDHeader: "req-2"})
	anonymous := serve(router, http.MethodPost, "/containers", nil)

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replay"))
	assert.JSONEq(t, `{"call":2}`, other.Body.String())
	assert.JSONEq(t, `{"call":3}`, anonymous.Body.String())
}

func TestIdempotencyMiddleware_FailedWritesAreNotStored(t *testing.T) {
	store := NewCacheRequestIDStore(cache.NewInMemoryCache(zap.NewNop()))
	var calls atomic.Int32

	router := gin.New()
	router.Use(IdempotencyMiddleware(store, zap.NewNop(), time.Minute))
	router.POST("/reservations", func(c *gin.Context) {
		calls.Add(1)
		c.JSON(http.StatusConflict, gin.H{"error": "CapacityExceeded"})
	})

	headers := map[string]string{RequestIDHeader: "req-1"}
	serve(router, http.MethodPost, "/reservations", headers)
	serve(router, http.MethodPost, "/reservations", headers)

	assert.Equal(t, int32(2), calls.Load())
}

func TestRateLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RateLimitMiddleware(NewClientLimiter(10), zap.NewNop()))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/ping", nil).Code)
	w := serve(router, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware())
	router.GET("/alerts", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(router, http.MethodOptions, "/alerts", map[string]string{
		"Origin":                        "http://localhost:8000",
		"Access-Control-Request-Method": "GET",
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
