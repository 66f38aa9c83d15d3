package handlers

import (
	"context"
	"net/http"
	"time"

	"lactacare/internal/domain"
	"lactacare/internal/registry"
	"lactacare/internal/repository"
	"lactacare/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReservationService is the booking API the handler drives
type ReservationService interface {
	Create(ctx context.Context, cmd registry.CreateReservationCommand) (*domain.Reservation, error)
	Confirm(ctx context.Context, id string) (*domain.Reservation, error)
	Cancel(ctx context.Context, id string) (*domain.Reservation, error)
	Complete(ctx context.Context, id string) (*domain.Reservation, error)
	Get(ctx context.Context, id string) (*domain.Reservation, error)
	List(ctx context.Context, filter repository.ReservationFilter) ([]*domain.Reservation, error)
	Occupancy(ctx context.Context, roomID string, date time.Time, start, end domain.ClockTime) (int, error)
}

// AttentionRecorder completes a reservation together with the pickups made during it
type AttentionRecorder interface {
	RecordAttention(ctx context.Context, reservationID string, containerIDs []string) (*registry.AttentionResult, error)
}

type ReservationHandler struct {
	service   ReservationService
	attention AttentionRecorder
	logger    *zap.Logger
}

func NewReservationHandler(service ReservationService, attention AttentionRecorder, logger *zap.Logger) *ReservationHandler {
	return &ReservationHandler{service: service, attention: attention, logger: logger}
}

// CreateReservation handles POST /api/v1/reservations
// @Summary      Book a lactation room
// @Description  Crea una reserva pendiente. Falla con CapacityExceeded si las reservas activas que se solapan ya ocupan la capacidad de la sala.
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-ID  header    string                    false  "Request ID para idempotencia"
// @Param        request       body      CreateReservationRequest  true   "Datos de la reserva"
// @Success      201           {object}  ReservationResponse       "Reserva creada"
// @Failure      400           {object}  errors.StandardError      "Request inválido - fecha u horario"
// @Failure      404           {object}  errors.StandardError      "Sala no encontrada"
// @Failure      409           {object}  errors.StandardError      "Capacidad de la sala agotada"
// @Router       /reservations [post]
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request", zap.Error(err))
		c.Error(errors.NewInvalidRequest("invalid request", err.Error()))
		c.Abort()
		return
	}

	cmd, err := parseReservationRequest(req)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	res, err := h.service.Create(c.Request.Context(), cmd)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, toReservationResponse(res))
}

func parseReservationRequest(req CreateReservationRequest) (registry.CreateReservationCommand, error) {
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return registry.CreateReservationCommand{}, err
	}
	start, err := domain.ParseClockTime(req.StartTime)
	if err != nil {
		return registry.CreateReservationCommand{}, err
	}
	end, err := domain.ParseClockTime(req.EndTime)
	if err != nil {
		return registry.CreateReservationCommand{}, err
	}
	return registry.CreateReservationCommand{
		PatientID: req.PatientID,
		RoomID:    req.RoomID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}, nil
}

// ListReservations handles GET /api/v1/reservations
// @Summary      List reservations
// @Description  Lista reservas filtradas por sala, fecha, paciente o estado
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        room     query     string  false  "ID de la sala"
// @Param        date     query     string  false  "Fecha (YYYY-MM-DD)"
// @Param        patient  query     string  false  "ID de la paciente"
// @Param        state    query     string  false  "Estado"  Enums(pending, confirmed, cancelled, completed)
// @Success      200      {object}  ListResponse[ReservationResponse]
// @Failure      400      {object}  errors.StandardError  "Filtro inválido"
// @Router       /reservations [get]
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	filter := repository.ReservationFilter{
		PatientID: c.Query("patient"),
		RoomID:    c.Query("room"),
	}
	if d := c.Query("date"); d != "" {
		date, err := domain.ParseDate(d)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		filter.Date = &date
	}
	if state := c.Query("state"); state != "" {
		switch s := domain.ReservationState(state); s {
		case domain.ReservationPending, domain.ReservationConfirmed, domain.ReservationCancelled, domain.ReservationCompleted:
			filter.State = s
		default:
			c.Error(errors.NewValidationError("unknown reservation state "+state, "state"))
			c.Abort()
			return
		}
	}

	reservations, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, newListResponse(toReservationResponses(reservations)))
}

// SlotOccupancy handles GET /api/v1/reservations/occupancy
// @Summary      Slot occupancy
// @Description  Cuenta las reservas activas (pendientes o confirmadas) que se solapan con el horario indicado
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        room        query     string  true  "ID de la sala"
// @Param        date        query     string  true  "Fecha (YYYY-MM-DD)"
// @Param        start_time  query     string  true  "Hora de inicio (HH:MM)"
// @Param        end_time    query     string  true  "Hora de fin (HH:MM)"
// @Success      200         {object}  OccupancyResponse
// @Failure      400         {object}  errors.StandardError  "Sala, fecha u horario inválido"
// @Router       /reservations/occupancy [get]
func (h *ReservationHandler) SlotOccupancy(c *gin.Context) {
	req := CreateReservationRequest{
		RoomID:    c.Query("room"),
		Date:      c.Query("date"),
		StartTime: c.Query("start_time"),
		EndTime:   c.Query("end_time"),
	}
	if req.RoomID == "" {
		c.Error(errors.NewValidationError("room is required", "room"))
		c.Abort()
		return
	}
	slot, err := parseReservationRequest(req)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	if slot.EndTime <= slot.StartTime {
		c.Error(domain.NewInvalidInput("end_time %s must be after start_time %s", slot.EndTime, slot.StartTime))
		c.Abort()
		return
	}

	active, err := h.service.Occupancy(c.Request.Context(), slot.RoomID, slot.Date, slot.StartTime, slot.EndTime)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, OccupancyResponse{
		RoomID:    slot.RoomID,
		Date:      slot.Date.Format(domain.DateLayout),
		StartTime: slot.StartTime.String(),
		EndTime:   slot.EndTime.String(),
		Active:    active,
	})
}

// GetReservation handles GET /api/v1/reservations/:id
// @Summary      Get a reservation
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID de la reserva"
// @Success      200  {object}  ReservationResponse
// @Failure      404  {object}  errors.StandardError  "Reserva no encontrada"
// @Router       /reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	res, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(res))
}

// ConfirmReservation handles POST /api/v1/reservations/:id/confirm
// @Summary      Confirm a reservation
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID de la reserva"
// @Success      200  {object}  ReservationResponse
// @Failure      404  {object}  errors.StandardError  "Reserva no encontrada"
// @Failure      409  {object}  errors.StandardError  "Transición inválida - solo se confirman reservas pendientes"
// @Router       /reservations/{id}/confirm [post]
func (h *ReservationHandler) ConfirmReservation(c *gin.Context) {
	h.transition(c, h.service.Confirm)
}

// CancelReservation handles POST /api/v1/reservations/:id/cancel
// @Summary      Cancel a reservation
// @Description  Cancela una reserva pendiente o confirmada y libera su capacidad
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID de la reserva"
// @Success      200  {object}  ReservationResponse
// @Failure      404  {object}  errors.StandardError  "Reserva no encontrada"
// @Failure      409  {object}  errors.StandardError  "Transición inválida"
// @Router       /reservations/{id}/cancel [post]
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

func (h *ReservationHandler) transition(c *gin.Context, apply func(ctx context.Context, id string) (*domain.Reservation, error)) {
	res, err := apply(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, toReservationResponse(res))
}

// CompleteReservation handles POST /api/v1/reservations/:id/complete
// @Summary      Complete a reservation
// @Description  Completa una reserva confirmada. Si se envían container_ids, confirma además el retiro de esos contenedores (deben estar marcados para retiro y pertenecer a la paciente); si alguno no es válido no se aplica ningún cambio.
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true   "ID de la reserva"
// @Param        request  body      CompleteReservationRequest  false  "Contenedores entregados"
// @Success      200      {object}  AttentionResponse
// @Failure      400      {object}  errors.StandardError  "Contenedor de otra paciente o repetido"
// @Failure      404      {object}  errors.StandardError  "Reserva o contenedor no encontrado"
// @Failure      409      {object}  errors.StandardError  "Transición inválida"
// @Router       /reservations/{id}/complete [post]
func (h *ReservationHandler) CompleteReservation(c *gin.Context) {
	var req CompleteReservationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(errors.NewInvalidRequest("invalid request", err.Error()))
			c.Abort()
			return
		}
	}

	if len(req.ContainerIDs) == 0 {
		res, err := h.service.Complete(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		c.JSON(http.StatusOK, AttentionResponse{Reservation: toReservationResponse(res), Containers: []ContainerResponse{}})
		return
	}

	result, err := h.attention.RecordAttention(c.Request.Context(), c.Param("id"), req.ContainerIDs)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, toAttentionResponse(result))
}
