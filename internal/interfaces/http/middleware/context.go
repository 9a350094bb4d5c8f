package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storekit/admission/internal/domain/models"
)

// EdgeSessionFrom returns the provisional session stored by the admission
// middleware, if any. Callers must not treat it as authoritative.
func EdgeSessionFrom(c *gin.Context) *models.EdgeSession {
	if v, ok := c.Get(ctxKeyEdgeSession); ok {
		if session, ok := v.(*models.EdgeSession); ok {
			return session
		}
	}
	return nil
}

// CanonicalSessionFrom returns the authoritative session stored by the
// admission or RequireSession middleware, if full validation ran.
func CanonicalSessionFrom(c *gin.Context) *models.CanonicalSession {
	if v, ok := c.Get(ctxKeyCanonicalSession); ok {
		if session, ok := v.(*models.CanonicalSession); ok {
			return session
		}
	}
	return nil
}

func nowUnix() int64 {
	return time.Now().Unix()
}
