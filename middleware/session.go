package middleware

import (
	"context"
	"net/http"
	"time"

	"farmstore-backend/session"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "farmstore_session"
	SessionHeader = "X-Session-Token"

	sessionContextKey = "session"
)

type SessionRegistry interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

type SessionIssuer interface {
	Issue() (token, sessionID string, err error)
	Validate(token string) (*session.Claims, error)
	TTL() time.Duration
}

// Session attaches the visitor's session to the request. The token is read
// from the X-Session-Token header or the session cookie; a missing, invalid
// or expired token starts a fresh session and the new token is returned in
// both places.
func Session(registry SessionRegistry, issuer SessionIssuer, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(SessionHeader)
		if token == "" {
			token, _ = c.Cookie(SessionCookie)
		}

		var sid string
		if token != "" {
			if claims, err := issuer.Validate(token); err == nil {
				sid = claims.SessionID
			}
		}

		if sid == "" {
			var err error
			token, sid, err = issuer.Issue()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
				c.Abort()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, token, int(issuer.TTL().Seconds()), "/", "", secureCookie, true)
			c.Header(SessionHeader, token)
		}

		s, err := registry.Get(c.Request.Context(), sid)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service is shutting down"})
			c.Abort()
			return
		}

		c.Set(sessionContextKey, s)
		c.Set("session_id", sid)
		c.Next()
	}
}

// CurrentSession returns the session attached by Session, or nil.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}
