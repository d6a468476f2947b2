package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/subshare/internal/credentials"
)

func (s *Server) RevealCredentials(c *gin.Context) {
	sub, err := s.subscriptionSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	state := s.guard.Reveal(sub.ID)
	if s.obsMetrics != nil {
		s.obsMetrics.RevealStarted()
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"reveal": state,
		"secret": credentials.Decode(sub.Credentials),
	}})
}

func (s *Server) GetCredentials(c *gin.Context) {
	sub, err := s.subscriptionSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	display := credentials.MaskedDisplay
	revealed := s.guard.RevealedFor(sub.ID)
	if revealed {
		display = credentials.Decode(sub.Credentials)
	}

	payload := gin.H{
		"display":  display,
		"revealed": revealed,
	}
	if state, ok := s.guard.Active(); ok && state.SubscriptionID == sub.ID {
		payload["seconds_left"] = state.SecondsLeft
		payload["expires_at"] = state.ExpiresAt
	}

	c.JSON(http.StatusOK, gin.H{"data": payload})
}

// CopyCredentials hands out the clear secret only while the reveal window
// for this subscription is open.
func (s *Server) CopyCredentials(c *gin.Context) {
	sub, err := s.subscriptionSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if !s.guard.RevealedFor(sub.ID) {
		AbortWithError(c, credentials.ErrNotRevealed)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"secret": credentials.Decode(sub.Credentials),
	}})
}
