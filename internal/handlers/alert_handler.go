package handlers

import (
	"context"
	"net/http"
	"strconv"

	"lactacare/internal/alerts"
	"lactacare/internal/domain"
	"lactacare/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AlertLister serves alert listings, usually through the listing cache
type AlertLister interface {
	List(ctx context.Context, filter alerts.Filter) []domain.AlertRecord
}

// AlertInbox is the read-state side of the dispatcher
type AlertInbox interface {
	Get(id int64) (domain.AlertRecord, bool)
	UnreadCount() int
	MarkRead(ctx context.Context, id int64)
	MarkAllRead(ctx context.Context) int
}

type AlertHandler struct {
	lister AlertLister
	inbox  AlertInbox
	logger *zap.Logger
}

func NewAlertHandler(lister AlertLister, inbox AlertInbox, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{lister: lister, inbox: inbox, logger: logger}
}

// ListAlerts handles GET /api/v1/alerts
// @Summary      List alerts
// @Description  Lista alertas de la más reciente a la más antigua. filter=unread devuelve solo las no leídas; filter=kind requiere el parámetro kind.
// @Tags         alerts
// @Produce      json
// @Security     BearerAuth
// @Param        filter  query     string  false  "Filtro"  Enums(all, unread, kind)
// @Param        kind    query     string  false  "Tipo de alerta"  Enums(near_expiry, pickup_overdue, temperature_excursion, container_withdrawn, container_expired, capacity_reached)
// @Success      200     {object}  ListResponse[domain.AlertRecord]
// @Failure      400     {object}  errors.StandardError  "Filtro o tipo desconocido"
// @Router       /alerts [get]
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	filter, err := alerts.ParseFilter(c.Query("filter"), c.Query("kind"))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, newListResponse(h.lister.List(c.Request.Context(), filter)))
}

// UnreadCount handles GET /api/v1/alerts/unread-count
// @Summary      Count unread alerts
// @Tags         alerts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  UnreadCountResponse
// @Router       /alerts/unread-count [get]
func (h *AlertHandler) UnreadCount(c *gin.Context) {
	c.JSON(http.StatusOK, UnreadCountResponse{Unread: h.inbox.UnreadCount()})
}

// MarkRead handles POST /api/v1/alerts/:id/read
// @Summary      Mark an alert as read
// @Description  Marca una alerta como leída. Marcar una alerta ya leída no cambia su fecha de lectura.
// @Tags         alerts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "ID de la alerta"
// @Success      200  {object}  domain.AlertRecord
// @Failure      400  {object}  errors.StandardError  "ID inválido"
// @Failure      404  {object}  errors.StandardError  "Alerta no encontrada"
// @Router       /alerts/{id}/read [post]
func (h *AlertHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.Error(errors.NewValidationError("invalid alert id", "id"))
		c.Abort()
		return
	}
	if _, ok := h.inbox.Get(id); !ok {
		c.Error(errors.NewNotFound("alert", c.Param("id")))
		c.Abort()
		return
	}

	h.inbox.MarkRead(c.Request.Context(), id)
	record, _ := h.inbox.Get(id)
	c.JSON(http.StatusOK, record)
}

// MarkAllRead handles POST /api/v1/alerts/read-all
// @Summary      Mark every alert as read
// @Tags         alerts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  MarkAllReadResponse
// @Router       /alerts/read-all [post]
func (h *AlertHandler) MarkAllRead(c *gin.Context) {
	marked := h.inbox.MarkAllRead(c.Request.Context())
	h.logger.Info("Alerts marked as read", zap.Int("count", marked))
	c.JSON(http.StatusOK, MarkAllReadResponse{Marked: marked})
}
