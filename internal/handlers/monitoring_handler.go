package handlers

import (
	"context"
	"net/http"
	"time"

	"lactacare/internal/domain"
	"lactacare/internal/registry"
	"lactacare/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TickReporter exposes the outcome of the last container tick
type TickReporter interface {
	LastReport() (registry.TickReport, bool)
}

// Pinger is a dependency whose health is reported by /health
type Pinger interface {
	Ping(ctx context.Context) error
}

type MonitoringHandler struct {
	containers   ContainerService
	reservations ReservationService
	inbox        AlertInbox
	temperature  TemperatureService
	ticks        TickReporter
	logger       *zap.Logger
}

func NewMonitoringHandler(containers ContainerService, reservations ReservationService, inbox AlertInbox, temperature TemperatureService, ticks TickReporter, logger *zap.Logger) *MonitoringHandler {
	return &MonitoringHandler{
		containers:   containers,
		reservations: reservations,
		inbox:        inbox,
		temperature:  temperature,
		ticks:        ticks,
		logger:       logger,
	}
}

// GetStats godoc
// @Summary      Get service statistics
// @Description  Obtiene conteos de contenedores y reservas por estado, alertas no leídas, unidades monitoreadas y el resultado del último ciclo de custodia
// @Tags         monitoring
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatsResponse  "Estadísticas del servicio"
// @Failure      500  {object}  errors.StandardError  "Error interno del servidor"
// @Router       /monitoring/stats [get]
func (h *MonitoringHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	containers, err := h.containers.List(ctx, repository.ContainerFilter{})
	if err != nil {
		h.logger.Error("Failed to count containers", zap.Error(err))
		c.Error(err)
		c.Abort()
		return
	}
	reservations, err := h.reservations.List(ctx, repository.ReservationFilter{})
	if err != nil {
		h.logger.Error("Failed to count reservations", zap.Error(err))
		c.Error(err)
		c.Abort()
		return
	}
	units, err := h.temperature.Units(ctx)
	if err != nil {
		h.logger.Error("Failed to list units", zap.Error(err))
		c.Error(err)
		c.Abort()
		return
	}

	stats := StatsResponse{
		Containers: map[string]int{
			string(domain.ContainerStored):           0,
			string(domain.ContainerFlaggedForPickup): 0,
			string(domain.ContainerWithdrawn):        0,
			string(domain.ContainerExpired):          0,
		},
		Reservations: map[string]int{
			string(domain.ReservationPending):   0,
			string(domain.ReservationConfirmed): 0,
			string(domain.ReservationCancelled): 0,
			string(domain.ReservationCompleted): 0,
		},
		UnreadAlerts:   h.inbox.UnreadCount(),
		MonitoredUnits: len(units),
	}
	for _, ct := range containers {
		stats.Containers[string(ct.State)]++
	}
	for _, r := range reservations {
		stats.Reservations[string(r.State)]++
	}
	if report, ok := h.ticks.LastReport(); ok {
		stats.LastContainerTick = &report
	}

	c.JSON(http.StatusOK, stats)
}

// RoomLister lists the room catalog
type RoomLister interface {
	Rooms(ctx context.Context) ([]domain.Room, error)
}

// ListRooms godoc
// @Summary      List lactation rooms
// @Description  Lista las salas de lactancia con su capacidad
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ListResponse[domain.Room]
// @Router       /rooms [get]
func ListRooms(rooms RoomLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := rooms.Rooms(c.Request.Context())
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		c.JSON(http.StatusOK, newListResponse(list))
	}
}

// Health godoc
// @Summary      Health check
// @Description  Verifica el estado del servicio y de sus dependencias
// @Tags         health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Failure      503  {object}  HealthResponse
// @Router       /health [get]
func Health(service string, deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp := HealthResponse{Status: "healthy", Service: service, Checks: make(map[string]string, len(deps))}
		status := http.StatusOK
		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "unhealthy"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		c.JSON(status, resp)
	}
}
