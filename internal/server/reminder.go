package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GenerateReminder(c *gin.Context) {
	message, err := s.reminderSvc.Generate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": message}})
}
