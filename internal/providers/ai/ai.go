// Package ai defines the contract with the external generative verifier.
// The model is an opaque collaborator: callers never trust its structured
// output beyond the schema agreed here, and malformed responses are treated
// exactly like a negative judgment.
package ai

import (
	"context"
	"errors"
)

// BillScan is the structured result of scanning a subscription bill image.
// All fields are required; a scan missing any of them aborts the import.
type BillScan struct {
	ServiceName string  `json:"serviceName"`
	TotalPrice  float64 `json:"totalPrice"`
	RenewalDate string  `json:"renewalDate"`
	MaxSlots    int     `json:"maxSlots"`
}

// VerifyReceiptRequest carries a payment receipt image plus the expectation
// the verifier should check it against.
type VerifyReceiptRequest struct {
	Image          []byte
	MimeType       string
	ExpectedAmount float64
	ExpectedSender string
}

// ReceiptJudgment is the verifier's structured judgment of one receipt.
type ReceiptJudgment struct {
	Valid          bool    `json:"valid"`
	DetectedAmount float64 `json:"detectedAmount"`
	DetectedSender string  `json:"detectedSender"`
	TransactionID  string  `json:"transactionId,omitempty"`
	Reason         string  `json:"reason"`
}

// Verifier is the external AI collaborator. Implementations must return
// ErrMalformedResponse (possibly wrapped) whenever the model's output cannot
// be parsed into the agreed schema.
type Verifier interface {
	ScanBill(ctx context.Context, image []byte, mimeType string) (BillScan, error)
	VerifyReceipt(ctx context.Context, req VerifyReceiptRequest) (ReceiptJudgment, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

var (
	ErrMalformedResponse = errors.New("malformed_ai_response")
	ErrMissingAPIKey     = errors.New("missing_ai_api_key")
)
