// Package domain defines the expense ledger boundary. Expenses are a
// parallel bookkeeping log per member and never touch payment state.
package domain

import (
	"context"
	"errors"

	subdomain "github.com/smallbiznis/subshare/internal/subscription/domain"
)

type AddExpenseRequest struct {
	SubscriptionID string
	MemberID       string
	Amount         float64                   `json:"amount"`
	Category       subdomain.ExpenseCategory `json:"category"`
	Description    string                    `json:"description"`
}

type Service interface {
	// Add prepends an expense to the member's ledger.
	Add(ctx context.Context, req AddExpenseRequest) (subdomain.Member, error)
	// Delete removes an expense by id. A missing id is tolerated and the
	// ledger is returned unchanged.
	Delete(ctx context.Context, subscriptionID, memberID, expenseID string) (subdomain.Member, error)
}

var (
	ErrInvalidCategory = errors.New("invalid_expense_category")
	ErrInvalidAmount   = errors.New("invalid_expense_amount")
)
