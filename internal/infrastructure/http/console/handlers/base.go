// Package handlers provides the console's HTTP request handlers.
package handlers

import (
	"github.com/gin-gonic/gin"

	"autogest/internal/core/apperror"
	"autogest/internal/domain/session"
	"autogest/internal/infrastructure/http/console/middleware"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindForm binds a form submission. On failure it returns a validation error
// carrying message.
func (h *BaseHandler) BindForm(c *gin.Context, obj any, message string) error {
	if err := c.ShouldBind(obj); err != nil {
		return apperror.NewValidation(message).WithDetail("error", err.Error())
	}
	return nil
}

// Error registers err on the gin context and aborts. The response is
// produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Session returns the session snapshot the guard attached to the request.
func (h *BaseHandler) Session(c *gin.Context) *session.Session {
	return middleware.CurrentSession(c)
}

// messageOf returns the operator-facing message and status of err.
func messageOf(err error, fallback string) (string, int) {
	if appErr, ok := apperror.AsAppError(err); ok && appErr.Message != "" {
		return appErr.Message, appErr.HTTPStatus
	}
	return fallback, apperror.GetHTTPStatus(err)
}
