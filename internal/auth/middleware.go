package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"transcendent/backend/internal/models"
)

// TokenParam is the request value carrying the session token.
const TokenParam = "auth"

const sessionKey = "session"

// SessionValidator resolves a token to an active session, or nil.
type SessionValidator interface {
	GetIfActive(ctx context.Context, token string) (*models.Session, error)
}

// ErrorResponder writes the response for an unexpected failure.
type ErrorResponder func(c *gin.Context, err error)

// SessionMiddleware admits a request only if it carries a token for an active
// session. The session is stored on the context for the handlers that follow.
func SessionMiddleware(sessions SessionValidator, log *zap.Logger, fail ErrorResponder) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			abortUnauthorized(c)
			return
		}

		session, err := sessions.GetIfActive(c.Request.Context(), token)
		if err != nil {
			log.Error("Session lookup failed", zap.Error(err))
			fail(c, err)
			c.Abort()
			return
		}
		if session == nil {
			abortUnauthorized(c)
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// TokenFromRequest reads the token from the query string or form body, and
// falls back to an "Authorization: Bearer" header.
func TokenFromRequest(c *gin.Context) string {
	if token := c.Query(TokenParam); token != "" {
		return token
	}
	if token := c.PostForm(TokenParam); token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}

// CurrentSession returns the session stored by SessionMiddleware.
func CurrentSession(c *gin.Context) (*models.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	session, ok := v.(*models.Session)
	return session, ok && session != nil
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
}
