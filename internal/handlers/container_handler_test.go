package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lactacare/internal/domain"
	"lactacare/internal/repository"
	"lactacare/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockContainerService is a mock implementation of ContainerService
type MockContainerService struct {
	mock.Mock
}

func (m *MockContainerService) Register(ctx context.Context, volumeMl float64, mode domain.StorageMode, ownerPatientID string, extractedAt time.Time) (*domain.Container, error) {
	args := m.Called(ctx, volumeMl, mode, ownerPatientID, extractedAt)
	return containerOrNil(args)
}

func (m *MockContainerService) FlagForPickup(ctx context.Context, id string) (*domain.Container, error) {
	return containerOrNil(m.Called(ctx, id))
}

func (m *MockContainerService) CancelFlag(ctx context.Context, id string) (*domain.Container, error) {
	return containerOrNil(m.Called(ctx, id))
}

func (m *MockContainerService) ConfirmPickup(ctx context.Context, id string) (*domain.Container, error) {
	return containerOrNil(m.Called(ctx, id))
}

func (m *MockContainerService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockContainerService) Get(ctx context.Context, id string) (*domain.Container, error) {
	return containerOrNil(m.Called(ctx, id))
}

func (m *MockContainerService) List(ctx context.Context, filter repository.ContainerFilter) ([]*domain.Container, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Container), args.Error(1)
}

func containerOrNil(args mock.Arguments) (*domain.Container, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Container), args.Error(1)
}

func setupContainerRouter(service ContainerService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler(zap.NewNop()))

	h := NewContainerHandler(service, zap.NewNop())
	v1 := router.Group("/api/v1")
	{
		v1.POST("/containers", h.RegisterContainer)
		v1.GET("/containers", h.ListContainers)
		v1.GET("/containers/:id", h.GetContainer)
		v1.POST("/containers/:id/flag", h.FlagForPickup)
		v1.DELETE("/containers/:id", h.DeleteContainer)
	}
	return router
}

func doJSON(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterContainer_Success(t *testing.T) {
	service := new(MockContainerService)
	router := setupContainerRouter(service)

	extracted := time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)
	stored := &domain.Container{
		ID:             "c-1",
		VolumeMl:       120,
		StorageMode:    domain.Refrigerated,
		State:          domain.ContainerStored,
		OwnerPatientID: "patient-42",
		ExtractedAt:    extracted,
		ExpiresAt:      extracted.Add(domain.RefrigeratedShelfLife),
		Version:        1,
	}
	service.On("Register", mock.Anything, 120.0, domain.Refrigerated, "patient-42", extracted).Return(stored, nil)

	w := doJSON(router, http.MethodPost, "/api/v1/containers", map[string]interface{}{
		"volume_ml":        120,
		"storage_mode":     "refrigerated",
		"owner_patient_id": "patient-42",
		"extracted_at":     "2024-01-15T08:30:00Z",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp ContainerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "c-1", resp.ID)
	assert.Equal(t, "stored", resp.State)
	assert.Equal(t, extracted.Add(domain.RefrigeratedShelfLife), resp.ExpiresAt)
	service.AssertExpectations(t)
}

func TestRegisterContainer_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing owner", map[string]interface{}{"volume_ml": 100, "storage_mode": "frozen", "extracted_at": "2024-01-15T08:30:00Z"}},
		{"unknown storage mode", map[string]interface{}{"volume_ml": 100, "storage_mode": "ambient", "owner_patient_id": "p", "extracted_at": "2024-01-15T08:30:00Z"}},
		{"bad timestamp", map[string]interface{}{"volume_ml": 100, "storage_mode": "frozen", "owner_patient_id": "p", "extracted_at": "yesterday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockContainerService)
			router := setupContainerRouter(service)

			w := doJSON(router, http.MethodPost, "/api/v1/containers", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			service.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRegisterContainer_DomainRejection(t *testing.T) {
	service := new(MockContainerService)
	router := setupContainerRouter(service)
	service.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.NewInvalidInput("volume must be positive, got -1"))

	w := doJSON(router, http.MethodPost, "/api/v1/containers", map[string]interface{}{
		"volume_ml":        -1,
		"storage_mode":     "frozen",
		"owner_patient_id": "p",
		"extracted_at":     "2024-01-15T08:30:00Z",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "volume must be positive")
}

func TestContainerTransitions_ErrorMapping(t *testing.T) {
	service := new(MockContainerService)
	router := setupContainerRouter(service)
	service.On("FlagForPickup", mock.Anything, "expired-1").Return(nil, domain.NewInvalidTransition("container expired-1 is expired"))
	service.On("FlagForPickup", mock.Anything, "ghost").Return(nil, domain.ErrContainerNotFound)
	service.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrContainerNotFound)
	service.On("Delete", mock.Anything, "ghost").Return(domain.ErrContainerNotFound)

	assert.Equal(t, http.StatusConflict, doJSON(router, http.MethodPost, "/api/v1/containers/expired-1/flag", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodPost, "/api/v1/containers/ghost/flag", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodGet, "/api/v1/containers/ghost", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodDelete, "/api/v1/containers/ghost", nil).Code)
}

func TestListContainers_Filter(t *testing.T) {
	service := new(MockContainerService)
	router := setupContainerRouter(service)
	filter := repository.ContainerFilter{OwnerPatientID: "patient-42", State: domain.ContainerFlaggedForPickup}
	service.On("List", mock.Anything, filter).Return([]*domain.Container{
		{ID: "c-1", State: domain.ContainerFlaggedForPickup, OwnerPatientID: "patient-42"},
	}, nil)

	w := doJSON(router, http.MethodGet, "/api/v1/containers?owner=patient-42&state=flagged_for_pickup", nil)
	bad := doJSON(router, http.MethodGet, "/api/v1/containers?state=lost", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
	service.AssertNumberOfCalls(t, "List", 1)
}
