package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"autogest/internal/core/apperror"
	appctx "autogest/internal/core/context"
	"autogest/pkg/logger"
)

// ErrorHandler renders errors registered with c.Error. Errors that require a
// fresh login become a redirect to loginPath; everything else renders the
// error page. Internal causes are logged and never shown.
func ErrorHandler(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		ctx := c.Request.Context()

		if apperror.RequiresLogin(err) {
			logger.Info(ctx, "redirecting to login", "error", err)
			c.Redirect(http.StatusSeeOther, loginPath)
			return
		}

		appErr, ok := apperror.AsAppError(err)
		if !ok {
			logger.Error(ctx, "unhandled error", "error", err)
			appErr = apperror.NewInternal(err)
		} else if appErr.Err != nil {
			logger.Error(ctx, "request error",
				"code", appErr.Code,
				"cause", appErr.Err,
			)
		}

		c.HTML(appErr.HTTPStatus, "error.html", gin.H{
			"Title":     "Error",
			"Code":      appErr.Code,
			"Message":   appErr.Message,
			"RequestID": appctx.GetRequestID(ctx),
		})
	}
}
