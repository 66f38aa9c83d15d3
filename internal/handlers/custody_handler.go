package handlers

import (
	"context"
	"net/http"
	"strconv"

	"lactacare/internal/database"
	"lactacare/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CustodyReader is the read side of the custody audit log
type CustodyReader interface {
	History(ctx context.Context, partitionKey string, limit int) ([]database.CustodyRecord, error)
	Count(ctx context.Context) (int, error)
}

// CustodyStatsResponse is returned by GET /custody/stats
type CustodyStatsResponse struct {
	Events int `json:"events" example:"42"`
}

type CustodyHandler struct {
	log    CustodyReader
	logger *zap.Logger
}

func NewCustodyHandler(log CustodyReader, logger *zap.Logger) *CustodyHandler {
	return &CustodyHandler{log: log, logger: logger}
}

// History godoc
// @Summary      Custody history of a subject
// @Description  Lista los eventos de custodia proyectados para un contenedor, sala o unidad, en orden de ocurrencia
// @Tags         custody
// @Produce      json
// @Param        key    path      string  true   "ID del contenedor, sala o unidad"
// @Param        limit  query     int     false  "Máximo de eventos (1-1000)"  default(50)
// @Success      200    {object}  ListResponse[database.CustodyRecord]
// @Failure      400    {object}  errors.StandardError  "Límite inválido"
// @Router       /custody/{key} [get]
func (h *CustodyHandler) History(c *gin.Context) {
	limit := defaultHistoryLimit
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 || n > maxHistoryLimit {
			c.Error(errors.NewValidationError("limit must be between 1 and 1000", "limit"))
			c.Abort()
			return
		}
		limit = n
	}

	records, err := h.log.History(c.Request.Context(), c.Param("key"), limit)
	if err != nil {
		h.logger.Error("Failed to read custody history", zap.String("key", c.Param("key")), zap.Error(err))
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, newListResponse(records))
}

// Stats godoc
// @Summary      Custody log statistics
// @Description  Obtiene el número total de eventos de custodia proyectados
// @Tags         custody
// @Produce      json
// @Success      200  {object}  CustodyStatsResponse
// @Failure      500  {object}  errors.StandardError  "Error interno del servidor"
// @Router       /custody/stats [get]
func (h *CustodyHandler) Stats(c *gin.Context) {
	n, err := h.log.Count(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to count custody events", zap.Error(err))
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, CustodyStatsResponse{Events: n})
}
