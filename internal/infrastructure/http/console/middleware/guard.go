package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"autogest/internal/domain/guard"
	"autogest/internal/domain/session"
	"autogest/internal/infrastructure/http/console/dto"
	"autogest/internal/metrics"
	"autogest/pkg/logger"
)

// Guard protects a console view. It evaluates the current session against
// rule on every request:
//
//	loading         -> 503 "Cargando..." page that refreshes itself
//	unauthenticated -> 303 to loginPath
//	forbidden       -> 403 denial page with the operator's actual role
//	authorized      -> identity attached to the request, view runs
func Guard(store session.Store, loginPath string, rule guard.Rule) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := store.Current()
		d := guard.Evaluate(store.Loaded(), sess, rule)
		metrics.RecordGuardDecision(c.FullPath(), d.State.String())

		switch d.State {
		case guard.Loading:
			c.Header("Retry-After", "1")
			c.HTML(http.StatusServiceUnavailable, "loading.html", gin.H{
				"Title": "Cargando...",
				"Path":  c.Request.URL.Path,
			})
			c.Abort()

		case guard.Unauthenticated:
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()

		case guard.Forbidden:
			logger.Info(c.Request.Context(), "access denied",
				"path", c.Request.URL.Path,
				"role", d.Role,
				"required_role", d.RequiredRole,
			)
			c.HTML(http.StatusForbidden, "denied.html", dto.NewDenialView(d, sess, c.Request.Referer()))
			c.Abort()

		default:
			setSession(c, sess)
			c.Next()
		}
	}
}
