package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	subscriptiondomain "github.com/smallbiznis/subshare/internal/subscription/domain"
)

func (s *Server) ListServices(c *gin.Context) {
	subs, err := s.subscriptionSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": subs})
}

func (s *Server) GetService(c *gin.Context) {
	sub, err := s.subscriptionSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sub})
}

func (s *Server) CreateService(c *gin.Context) {
	var req subscriptiondomain.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sub, err := s.subscriptionSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": sub})
}

func (s *Server) ImportServiceFromScan(c *gin.Context) {
	image, mimeType, err := formImage(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	sub, err := s.subscriptionSvc.ImportFromScan(c.Request.Context(), subscriptiondomain.ImportScanRequest{
		Image:    image,
		MimeType: mimeType,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": sub})
}

func (s *Server) DeleteService(c *gin.Context) {
	if err := s.subscriptionSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) UpdateInstructions(c *gin.Context) {
	var req struct {
		PaymentInstructions string `json:"payment_instructions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sub, err := s.subscriptionSvc.UpdateInstructions(c.Request.Context(), c.Param("id"), req.PaymentInstructions)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sub})
}

func (s *Server) ClaimSlot(c *gin.Context) {
	var req subscriptiondomain.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.SubscriptionID = c.Param("id")
	req.MemberID = c.Param("memberId")

	sub, err := s.subscriptionSvc.Claim(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sub})
}

// ConfirmPayment is the admin confirmation path. Without a body, or with a
// zero amount, the computed per-slot fee is charged.
func (s *Server) ConfirmPayment(c *gin.Context) {
	var req subscriptiondomain.ConfirmPaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	subscriptionID := c.Param("id")
	memberID := c.Param("memberId")

	var (
		resp subscriptiondomain.ConfirmPaymentResponse
		err  error
	)
	if req.Amount == 0 {
		resp, err = s.subscriptionSvc.ManualConfirm(c.Request.Context(), subscriptionID, memberID)
	} else {
		req.SubscriptionID = subscriptionID
		req.MemberID = memberID
		req.Provenance = subscriptiondomain.ProvenanceManual
		resp, err = s.subscriptionSvc.ConfirmPayment(c.Request.Context(), req)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DowngradeMember(c *gin.Context) {
	var req subscriptiondomain.DowngradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(string(req.Target)) == "" {
		AbortWithError(c, newValidationError("target", "target_required", "target status is required"))
		return
	}
	req.SubscriptionID = c.Param("id")
	req.MemberID = c.Param("memberId")

	sub, err := s.subscriptionSvc.Downgrade(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sub})
}
