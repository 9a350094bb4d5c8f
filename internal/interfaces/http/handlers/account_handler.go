package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storekit/admission/internal/interfaces/http/middleware"
)

// AccountHandler exposes the caller's admitted identity. The domain services
// behind these endpoints are external collaborators; the handlers only show
// what the admission layer asserted.
type AccountHandler struct{}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler() *AccountHandler {
	return &AccountHandler{}
}

// Me returns the canonical session identity the request was admitted under.
func (h *AccountHandler) Me(c *gin.Context) {
	session := middleware.CanonicalSessionFrom(c)
	if session == nil {
		// The admission middleware guarantees a canonical session on this
		// route; reaching here means the route was wired outside it.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    session.User,
		"session": session.Session,
	})
}
