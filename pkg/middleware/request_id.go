package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"lactacare/internal/cache"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// RequestIDHeader is the HTTP header name for request ID
	RequestIDHeader = "X-Request-ID"
	// RequestIDContextKey is the context key for request ID
	RequestIDContextKey = "request_id"
)

type requestIDKey struct{}

// StoredResponse is a write response kept for replay under its request ID
type StoredResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// RequestIDStore stores processed request IDs for idempotency
type RequestIDStore interface {
	Store(ctx context.Context, requestID string, response StoredResponse, ttl time.Duration) error
	// Get returns ErrRequestIDNotFound when nothing is stored for requestID
	Get(ctx context.Context, requestID string) (*StoredResponse, error)
}

var ErrRequestIDNotFound = errors.New("request ID not found")

// CacheRequestIDStore keeps responses in the shared cache (Redis or in-memory)
type CacheRequestIDStore struct {
	cache cache.Cache
}

func NewCacheRequestIDStore(c cache.Cache) *CacheRequestIDStore {
	return &CacheRequestIDStore{cache: c}
}

func requestKey(requestID string) string {
	return "idempotency:" + requestID
}

func (s *CacheRequestIDStore) Store(ctx context.Context, requestID string, response StoredResponse, ttl time.Duration) error {
	return cache.SetJSON(ctx, s.cache, requestKey(requestID), response, ttl)
}

func (s *CacheRequestIDStore) Get(ctx context.Context, requestID string) (*StoredResponse, error) {
	var resp StoredResponse
	if err := cache.GetJSON(ctx, s.cache, requestKey(requestID), &resp); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrRequestIDNotFound
		}
		return nil, err
	}
	return &resp, nil
}

// RequestIDMiddleware extracts or generates X-Request-ID header
func RequestIDMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
			logger.Debug("Generated new request ID",
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
			)
		}

		c.Set(RequestIDContextKey, requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDKey{}, requestID))
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID retrieves the request ID from the Gin context
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDContextKey)
}

// RequestIDFromContext returns the request ID carried by ctx, if any
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func isWrite(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// IdempotencyMiddleware replays the stored response of a write whose
// X-Request-ID was already processed, and stores successful write responses.
// Only client-supplied request IDs take part.
func IdempotencyMiddleware(store RequestIDStore, logger *zap.Logger, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isWrite(c.Request.Method) || c.GetHeader(RequestIDHeader) == "" {
			c.Next()
			return
		}
		requestID := c.GetHeader(RequestIDHeader)
		ctx := c.Request.Context()

		stored, err := store.Get(ctx, requestID)
		switch {
		case err == nil:
			logger.Info("Duplicate request detected, returning stored response",
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
			c.Header("Idempotent-Replay", "true")
			c.Data(stored.Status, "application/json; charset=utf-8", stored.Body)
			c.Abort()
			return
		case !errors.Is(err, ErrRequestIDNotFound):
			// fail open
			logger.Warn("Error checking request ID", zap.String("request_id", requestID), zap.Error(err))
		}

		writer := &responseWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		if status < 200 || status >= 300 || len(writer.body) == 0 {
			return
		}
		if err := store.Store(ctx, requestID, StoredResponse{Status: status, Body: writer.body}, ttl); err != nil {
			logger.Warn("Failed to store response for idempotency",
				zap.String("request_id", requestID),
				zap.Error(err),
			)
		}
	}
}

// responseWriter captures the response body
type responseWriter struct {
	gin.ResponseWriter
	body []byte
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body = append(w.body, s...)
	return w.ResponseWriter.WriteString(s)
}
