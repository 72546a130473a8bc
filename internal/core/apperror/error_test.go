package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsAppError_Wrapped(t *testing.T) {
	err := fmt.Errorf("list vehicles: %w", NewForbidden("sin permiso"))

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, CodeForbidden, appErr.Code)
	assert.Equal(t, http.StatusForbidden, GetHTTPStatus(err))

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("plain")))
}

func TestRequiresLogin(t *testing.T) {
	assert.True(t, RequiresLogin(NewSessionExpired()))
	assert.True(t, RequiresLogin(NewUnauthorized("x")))
	assert.False(t, RequiresLogin(NewForbidden("x")))
	assert.False(t, RequiresLogin(errors.New("plain")))

	assert.True(t, IsSessionExpired(fmt.Errorf("wrap: %w", NewSessionExpired())))
	assert.False(t, IsSessionExpired(NewUnauthorized("x")))
}

func TestAppError_CauseIsHidden(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewBackendUnavailable(cause)

	assert.Equal(t, "No se pudo conectar con el servidor", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusServiceUnavailable, err.HTTPStatus)
}

func TestNewBackend_KeepsStatus(t *testing.T) {
	err := NewBackend(http.StatusBadGateway, "")
	assert.Equal(t, http.StatusBadGateway, err.Details["backend_status"])
	assert.Equal(t, CodeBackend, err.Code)
}
