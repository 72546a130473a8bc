package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "autogest/internal/core/context"
	"autogest/internal/domain/session"
)

// SessionKey is the gin context key holding the request's session snapshot.
const SessionKey = "session"

// UserContext attaches the current session, if any, to the request without
// enforcing anything. Used on public pages.
func UserContext(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sess := store.Current(); sess != nil {
			setSession(c, sess)
		}
		c.Next()
	}
}

func setSession(c *gin.Context, sess *session.Session) {
	ctx := appctx.WithUser(c.Request.Context(), &appctx.UserContext{
		UserID:      sess.UserID,
		DisplayName: sess.DisplayName,
		Email:       sess.Email,
		Role:        string(sess.Role),
	})
	c.Request = c.Request.WithContext(ctx)
	c.Set(SessionKey, sess)
}

// CurrentSession returns the session snapshot attached by Guard or
// UserContext, or nil.
func CurrentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(SessionKey); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return nil
}
