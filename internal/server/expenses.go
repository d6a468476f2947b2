package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	expensedomain "github.com/smallbiznis/subshare/internal/expense/domain"
)

func (s *Server) AddExpense(c *gin.Context) {
	var req expensedomain.AddExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.SubscriptionID = c.Param("id")
	req.MemberID = c.Param("memberId")

	member, err := s.expenseSvc.Add(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": member})
}

// DeleteExpense tolerates unknown expense ids: deleting an already-removed
// entry responds 200 with the unchanged ledger.
func (s *Server) DeleteExpense(c *gin.Context) {
	member, err := s.expenseSvc.Delete(
		c.Request.Context(),
		c.Param("id"),
		c.Param("memberId"),
		c.Param("expenseId"),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": member})
}
