package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"lactacare/internal/database"
	"lactacare/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupCustodyRouter(t *testing.T) (*gin.Engine, *database.CustodyLog) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "custody.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	log := database.NewCustodyLog(db)

	router := gin.New()
	router.Use(middleware.ErrorHandler(zap.NewNop()))
	h := NewCustodyHandler(log, zap.NewNop())
	router.GET("/api/v1/custody/stats", h.Stats)
	router.GET("/api/v1/custody/:key", h.History)
	return router, log
}

func TestCustodyHandler_HistoryInOccurrenceOrder(t *testing.T) {
	router, log := setupCustodyRouter(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

	for i, typ := range []string{"ContainerRegistered", "ContainerFlaggedForPickup", "ContainerWithdrawn"} {
		_, err := log.Append(ctx, database.CustodyRecord{
			EventID:      fmt.Sprintf("evt-%d", i),
			EventType:    typ,
			Topic:        "lactacare.containers",
			PartitionKey: "c-1",
			Payload:      "{}",
			OccurredAt:   base.Add(time.Duration(i) * time.Hour),
			RecordedAt:   base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	w := doJSON(router, http.MethodGet, "/api/v1/custody/c-1?limit=2", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ListResponse[database.CustodyRecord]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "ContainerRegistered", resp.Items[0].EventType)
	assert.Equal(t, "ContainerFlaggedForPickup", resp.Items[1].EventType)

	w = doJSON(router, http.MethodGet, "/api/v1/custody/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats CustodyStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.Events)
}

func TestCustodyHandler_UnknownKeyIsEmpty(t *testing.T) {
	router, _ := setupCustodyRouter(t)

	w := doJSON(router, http.MethodGet, "/api/v1/custody/nobody", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"count":0}`, w.Body.String())
}

func TestCustodyHandler_InvalidLimit(t *testing.T) {
	router, _ := setupCustodyRouter(t)

	for _, limit := range []string{"0", "abc", "1001"} {
		w := doJSON(router, http.MethodGet, "/api/v1/custody/c-1?limit="+limit, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, limit)
	}
}
