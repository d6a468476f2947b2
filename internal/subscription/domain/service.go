package domain

import (
	"context"
	"errors"
)

// Provenance tells the lifecycle engine where a confirmation came from. It
// only influences the informational method label on the resulting record.
type Provenance string

const (
	ProvenanceManual   Provenance = "manual"
	ProvenanceVerifier Provenance = "verifier"
	ProvenanceOwner    Provenance = "owner"
)

type CreateSubscriptionRequest struct {
	Name                string  `json:"name"`
	Price               float64 `json:"price"`
	Currency            string  `json:"currency"`
	MaxSlots            int     `json:"max_slots"`
	RenewalDate         string  `json:"renewal_date"`
	Credentials         string  `json:"credentials"`
	PaymentInstructions string  `json:"payment_instructions"`
}

type ImportScanRequest struct {
	Image    []byte
	MimeType string
}

type ClaimRequest struct {
	SubscriptionID string
	MemberID       string
	Name           string `json:"name"`
}

type ConfirmPaymentRequest struct {
	SubscriptionID string
	MemberID       string
	Amount         float64    `json:"amount"`
	Sender         string     `json:"sender"`
	TransactionID  string     `json:"transaction_id"`
	Provenance     Provenance `json:"-"`
}

type ConfirmPaymentResponse struct {
	Record Member `json:"member"`
	// Applied is false when the confirmation was an idempotent no-op on an
	// already-paid member.
	Applied bool `json:"applied"`
	// FeeMismatch flags a confirmed amount that diverges from the computed
	// per-slot fee. Informational only; the amount is recorded as given.
	FeeMismatch bool `json:"fee_mismatch"`
}

type DowngradeRequest struct {
	SubscriptionID string
	MemberID       string
	Target         MemberStatus `json:"target"`
}

type Service interface {
	List(ctx context.Context) ([]Subscription, error)
	Get(ctx context.Context, id string) (Subscription, error)
	Create(ctx context.Context, req CreateSubscriptionRequest) (Subscription, error)
	ImportFromScan(ctx context.Context, req ImportScanRequest) (Subscription, error)
	Delete(ctx context.Context, id string) error
	UpdateInstructions(ctx context.Context, id, instructions string) (Subscription, error)

	Claim(ctx context.Context, req ClaimRequest) (Subscription, error)
	ConfirmPayment(ctx context.Context, req ConfirmPaymentRequest) (ConfirmPaymentResponse, error)
	ManualConfirm(ctx context.Context, subscriptionID, memberID string) (ConfirmPaymentResponse, error)
	Downgrade(ctx context.Context, req DowngradeRequest) (Subscription, error)
}

var (
	ErrSubscriptionNotFound = errors.New("subscription_not_found")
	ErrMemberNotFound       = errors.New("member_not_found")
	ErrInvalidName          = errors.New("invalid_name")
	ErrInvalidPrice         = errors.New("invalid_price")
	ErrInvalidSlots         = errors.New("invalid_slots")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidRenewalDate   = errors.New("invalid_renewal_date")
	ErrSlotOccupied         = errors.New("slot_occupied")
	ErrSlotEmpty            = errors.New("slot_empty")
	ErrInvalidTarget        = errors.New("invalid_target_status")
	ErrScanIncomplete       = errors.New("scan_incomplete")
)
