package handlers

import (
	"context"
	"net/http"
	"time"

	"lactacare/internal/domain"
	"lactacare/internal/repository"
	"lactacare/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContainerService is the custody API the handler drives
type ContainerService interface {
	Register(ctx context.Context, volumeMl float64, mode domain.StorageMode, ownerPatientID string, extractedAt time.Time) (*domain.Container, error)
	FlagForPickup(ctx context.Context, id string) (*domain.Container, error)
	CancelFlag(ctx context.Context, id string) (*domain.Container, error)
	ConfirmPickup(ctx context.Context, id string) (*domain.Container, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Container, error)
	List(ctx context.Context, filter repository.ContainerFilter) ([]*domain.Container, error)
}

type ContainerHandler struct {
	service ContainerService
	logger  *zap.Logger
}

func NewContainerHandler(service ContainerService, logger *zap.Logger) *ContainerHandler {
	return &ContainerHandler{service: service, logger: logger}
}

// RegisterContainer handles POST /api/v1/containers
// @Summary      Register a milk container
// @Description  Registra un contenedor en custodia. La fecha de vencimiento se calcula según el modo de almacenamiento.
// @Description  **Idempotencia**: Incluye X-Request-ID en el header para evitar duplicados.
// @Tags         containers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Request-ID  header    string                    false  "Request ID para idempotencia"
// @Param        request       body      RegisterContainerRequest  true   "Datos del contenedor"
// @Success      201           {object}  ContainerResponse         "Contenedor registrado"
// @Failure      400           {object}  errors.StandardError      "Request inválido - volumen, modo o fecha de extracción"
// @Failure      401           {object}  errors.StandardError      "No autorizado"
// @Router       /containers [post]
func (h *ContainerHandler) RegisterContainer(c *gin.Context) {
	var req RegisterContainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request", zap.Error(err))
		c.Error(errors.NewInvalidRequest("invalid request", err.Error()))
		c.Abort()
		return
	}

	mode, err := domain.ParseStorageMode(req.StorageMode)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	container, err := h.service.Register(c.Request.Context(), req.VolumeMl, mode, req.OwnerPatientID, req.ExtractedAt)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, toContainerResponse(container))
}

// ListContainers handles GET /api/v1/containers
// @Summary      List containers
// @Description  Lista contenedores, opcionalmente filtrados por paciente y estado
// @Tags         containers
// @Produce      json
// @Security     BearerAuth
// @Param        owner  query     string  false  "ID de la paciente"
// @Param        state  query     string  false  "Estado"  Enums(stored, flagged_for_pickup, withdrawn, expired)
// @Success      200    {object}  ListResponse[ContainerResponse]
// @Failure      400    {object}  errors.StandardError  "Estado desconocido"
// @Router       /containers [get]
func (h *ContainerHandler) ListContainers(c *gin.Context) {
	filter := repository.ContainerFilter{OwnerPatientID: c.Query("owner")}
	if state := c.Query("state"); state != "" {
		switch s := domain.ContainerState(state); s {
		case domain.ContainerStored, domain.ContainerFlaggedForPickup, domain.ContainerWithdrawn, domain.ContainerExpired:
			filter.State = s
		default:
			c.Error(errors.NewValidationError("unknown container state "+state, "state"))
			c.Abort()
			return
		}
	}

	containers, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, newListResponse(toContainerResponses(containers)))
}

// GetContainer handles GET /api/v1/containers/:id
// @Summary      Get a container
// @Tags         containers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID del contenedor"
// @Success      200  {object}  ContainerResponse
// @Failure      404  {object}  errors.StandardError  "Contenedor no encontrado"
// @Router       /containers/{id} [get]
func (h *ContainerHandler) GetContainer(c *gin.Context) {
	container, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, toContainerResponse(container))
}

// FlagForPickup handles POST /api/v1/containers/:id/flag
// @Summary      Flag a container for pickup
// @Description  Marca un contenedor almacenado para retiro. Si no se confirma el retiro en 24 horas se retira automáticamente.
// @Tags         containers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID del contenedor"
// @Success      200  {object}  ContainerResponse
// @Failure      404  {object}  errors.StandardError  "Contenedor no encontrado"
// @Failure      409  {object}  errors.StandardError  "Transición inválida - el contenedor no está almacenado"
// @Router       /containers/{id}/flag [post]
func (h *ContainerHandler) FlagForPickup(c *gin.Context) {
	h.transition(c, h.service.FlagForPickup)
}

// CancelFlag handles POST /api/v1/containers/:id/cancel-flag
// @Summary      Cancel a pickup flag
// @Description  Devuelve un contenedor marcado para retiro al estado almacenado
// @Tags         containers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID del contenedor"
// @Success      200  {object}  ContainerResponse
// @Failure      404  {object}  errors.StandardError  "Contenedor no encontrado"
// @Failure      409  {object}  errors.StandardError  "Transición inválida"
// @Router       /containers/{id}/cancel-flag [post]
func (h *ContainerHandler) CancelFlag(c *gin.Context) {
	h.transition(c, h.service.CancelFlag)
}

// ConfirmPickup handles POST /api/v1/containers/:id/confirm-pickup
// @Summary      Confirm a pickup
// @Description  Confirma el retiro de un contenedor marcado antes de que venza el plazo de 24 horas
// @Tags         containers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID del contenedor"
// @Success      200  {object}  ContainerResponse
// @Failure      404  {object}  errors.StandardError  "Contenedor no encontrado"
// @Failure      409  {object}  errors.StandardError  "Transición inválida"
// @Router       /containers/{id}/confirm-pickup [post]
func (h *ContainerHandler) ConfirmPickup(c *gin.Context) {
	h.transition(c, h.service.ConfirmPickup)
}

func (h *ContainerHandler) transition(c *gin.Context, apply func(ctx context.Context, id string) (*domain.Container, error)) {
	container, err := apply(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, toContainerResponse(container))
}

// DeleteContainer handles DELETE /api/v1/containers/:id
// @Summary      Delete a container record
// @Description  Elimina el registro de un contenedor
// @Tags         containers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "ID del contenedor"
// @Success      200  {object}  SuccessResponse
// @Failure      404  {object}  errors.StandardError  "Contenedor no encontrado"
// @Router       /containers/{id} [delete]
func (h *ContainerHandler) DeleteContainer(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "container deleted successfully"})
}
