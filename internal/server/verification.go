package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	verificationdomain "github.com/smallbiznis/subshare/internal/verification/domain"
)

func (s *Server) SubmitVerification(c *gin.Context) {
	image, mimeType, err := formImage(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	flow, err := s.verificationSvc.Submit(c.Request.Context(), verificationdomain.SubmitRequest{
		SubscriptionID: c.Param("id"),
		MemberID:       c.Param("memberId"),
		Image:          image,
		MimeType:       mimeType,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// The verifier call is still running; poll the flow for its outcome.
	c.JSON(http.StatusAccepted, gin.H{"data": flow})
}

func (s *Server) GetVerification(c *gin.Context) {
	flow, err := s.verificationSvc.Get(c.Request.Context(), c.Param("id"), c.Param("memberId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": flow})
}

func (s *Server) AcceptVerification(c *gin.Context) {
	resp, err := s.verificationSvc.Accept(c.Request.Context(), c.Param("id"), c.Param("memberId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelVerification(c *gin.Context) {
	flow, err := s.verificationSvc.Cancel(c.Request.Context(), c.Param("id"), c.Param("memberId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": flow})
}
