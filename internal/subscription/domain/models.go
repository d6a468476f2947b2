// Package domain contains the shared-subscription aggregate and its invariants.
package domain

import (
	"math"
	"time"
)

// MemberStatus is the payment lifecycle state of one slot.
type MemberStatus string

const (
	MemberStatusEmpty   MemberStatus = "empty"
	MemberStatusPending MemberStatus = "pending"
	MemberStatusPaid    MemberStatus = "paid"
)

// PaymentStatus marks a recorded payment.
type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusVerified PaymentStatus = "verified"
)

// Method labels are informational provenance only and never gate logic.
const (
	MethodManual     = "Manual"
	MethodAIVerified = "AI Verified"
	MethodOwner      = "Owner"
)

// ExpenseCategory is the fixed set of incidental-cost categories.
type ExpenseCategory string

const (
	ExpenseCategoryUpgrade ExpenseCategory = "Upgrade"
	ExpenseCategoryAddon   ExpenseCategory = "Add-on"
	ExpenseCategoryLateFee ExpenseCategory = "Late Fee"
	ExpenseCategoryGift    ExpenseCategory = "Gift"
	ExpenseCategoryOther   ExpenseCategory = "Other"
)

// ValidExpenseCategory reports whether c is one of the enumerated categories.
func ValidExpenseCategory(c ExpenseCategory) bool {
	switch c {
	case ExpenseCategoryUpgrade, ExpenseCategoryAddon, ExpenseCategoryLateFee,
		ExpenseCategoryGift, ExpenseCategoryOther:
		return true
	}
	return false
}

// Expense is one incidental charge attributed to a member. Purely additive;
// it never affects the member's payment status.
type Expense struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Amount      float64         `json:"amount"`
	Category    ExpenseCategory `json:"category"`
	Description string          `json:"description"`
}

// PaymentRecord is immutable once created. New confirmations prepend a new
// record rather than mutating history.
type PaymentRecord struct {
	ID            string        `json:"id"`
	Date          time.Time     `json:"date"`
	Amount        float64       `json:"amount"`
	Status        PaymentStatus `json:"status"`
	Method        string        `json:"method"`
	TransactionID string        `json:"transactionId,omitempty"`
	Sender        string        `json:"sender,omitempty"`
}

// Member occupies one slot of a subscription. An empty slot has a blank name
// and no payment history.
type Member struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Status         MemberStatus    `json:"status"`
	PaymentHistory []PaymentRecord `json:"paymentHistory"`
	Expenses       []Expense       `json:"expenses"`
}

// Subscription is the Service aggregate: a shared account split into a fixed
// number of equal-cost slots. len(Members) == MaxSlots at all times.
type Subscription struct {
	ID                  string   `json:"id"`
	Code                string   `json:"code,omitempty"`
	Name                string   `json:"name"`
	Price               float64  `json:"price"`
	Currency            string   `json:"currency"`
	MaxSlots            int      `json:"maxSlots"`
	RenewalDate         string   `json:"renewalDate"`
	Credentials         string   `json:"credentials"`
	PaymentInstructions string   `json:"paymentInstructions,omitempty"`
	Members             []Member `json:"members"`
}

// PerSlotFee is the ceiling-rounded share used for display and manual
// confirmation. Aggregate statistics intentionally use the unrounded
// Price/MaxSlots fraction instead.
func (s Subscription) PerSlotFee() float64 {
	if s.MaxSlots <= 0 {
		return 0
	}
	return math.Ceil(s.Price / float64(s.MaxSlots))
}

// FindMember returns the index of the member with the given id, or -1.
func (s Subscription) FindMember(memberID string) int {
	for i := range s.Members {
		if s.Members[i].ID == memberID {
			return i
		}
	}
	return -1
}
