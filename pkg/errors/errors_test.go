package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"lactacare/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"invalid input", domain.NewInvalidInput("volume must be positive"), "InvalidInput", http.StatusBadRequest},
		{"invalid transition", domain.NewInvalidTransition("container is expired"), "InvalidTransition", http.StatusConflict},
		{"capacity", domain.NewCapacityExceeded("room sala-1 is full"), "CapacityExceeded", http.StatusConflict},
		{"not found wrapped", fmt.Errorf("lookup: %w", domain.ErrContainerNotFound), "NotFound", http.StatusNotFound},
		{"version conflict", domain.ErrVersionConflict, "VersionConflict", http.StatusConflict},
		{"plain error", stderrors.New("disk full"), "InternalError", http.StatusInternalServerError},
		{"already standard", NewTooManyRequests("slow down"), "TooManyRequests", http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			std := FromDomain(tt.err)
			assert.Equal(t, tt.code, std.Code)
			assert.Equal(t, tt.status, std.HTTPStatus())
		})
	}
}

func TestFromDomain_CapacityIsDistinctFromTransition(t *testing.T) {
	capacity := FromDomain(domain.NewCapacityExceeded("full"))
	transition := FromDomain(domain.NewInvalidTransition("bad"))

	assert.Equal(t, capacity.HTTPStatus(), transition.HTTPStatus())
	assert.NotEqual(t, capacity.Code, transition.Code)
	assert.Equal(t, "full", capacity.Details)
}
