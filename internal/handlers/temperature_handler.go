package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"lactacare/internal/domain"
	"lactacare/internal/monitor"
	"lactacare/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

// TemperatureService ingests and reports sensor readings
type TemperatureService interface {
	Record(ctx context.Context, unitID string, temperatureC, humidityPct float64, observedAt time.Time) (*monitor.RecordResult, error)
	Units(ctx context.Context) ([]monitor.UnitStatus, error)
	History(ctx context.Context, unitID string, limit int) ([]domain.TemperatureReading, error)
}

type TemperatureHandler struct {
	service TemperatureService
	logger  *zap.Logger
}

func NewTemperatureHandler(service TemperatureService, logger *zap.Logger) *TemperatureHandler {
	return &TemperatureHandler{service: service, logger: logger}
}

// RecordReading handles POST /api/v1/temperature/readings
// @Summary      Record a sensor reading
// @Description  Registra una lectura de temperatura y humedad de una unidad de frío. Una lectura fuera de rango genera una alerta solo al entrar en excursión.
// @Tags         temperature
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      RecordReadingRequest  true  "Lectura"
// @Success      201      {object}  monitor.RecordResult
// @Failure      400      {object}  errors.StandardError  "Lectura inválida"
// @Failure      429      {object}  errors.StandardError  "Demasiadas lecturas"
// @Router       /temperature/readings [post]
func (h *TemperatureHandler) RecordReading(c *gin.Context) {
	var req RecordReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewInvalidRequest("invalid request", err.Error()))
		c.Abort()
		return
	}

	var observedAt time.Time
	if req.ObservedAt != nil {
		observedAt = *req.ObservedAt
	}
	result, err := h.service.Record(c.Request.Context(), req.UnitID, *req.TemperatureC, req.HumidityPct, observedAt)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListUnits handles GET /api/v1/temperature/units
// @Summary      List monitored units
// @Description  Devuelve la última lectura de cada unidad clasificada con los umbrales vigentes
// @Tags         temperature
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ListResponse[monitor.UnitStatus]
// @Router       /temperature/units [get]
func (h *TemperatureHandler) ListUnits(c *gin.Context) {
	units, err := h.service.Units(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, newListResponse(units))
}

// UnitHistory handles GET /api/v1/temperature/units/:id/readings
// @Summary      Reading history of a unit
// @Tags         temperature
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "ID de la unidad"
// @Param        limit  query     int     false  "Máximo de lecturas (1-1000)"  default(50)
// @Success      200    {object}  ListResponse[domain.TemperatureReading]
// @Failure      400    {object}  errors.StandardError  "Límite inválido"
// @Router       /temperature/units/{id}/readings [get]
func (h *TemperatureHandler) UnitHistory(c *gin.Context) {
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

	readings, err := h.service.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, newListResponse(readings))
}
