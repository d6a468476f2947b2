// Package domain defines the receipt verification state machine. One flow
// exists per (subscription, member) pair; the external verifier's judgment
// gates entry to review, and only an explicit accept commits a payment.
package domain

import (
	"context"
	"errors"

	subdomain "github.com/smallbiznis/subshare/internal/subscription/domain"
)

type FlowState string

const (
	FlowIdle     FlowState = "idle"
	FlowScanning FlowState = "scanning"
	FlowReview   FlowState = "review"
	FlowSuccess  FlowState = "success"
	FlowError    FlowState = "error"
)

// Flow is a point-in-time snapshot of one verification flow. Detected fields
// are populated in review and success only.
type Flow struct {
	SubscriptionID string    `json:"subscriptionId"`
	MemberID       string    `json:"memberId"`
	State          FlowState `json:"state"`
	DetectedAmount float64   `json:"detectedAmount,omitempty"`
	DetectedSender string    `json:"detectedSender,omitempty"`
	TransactionID  string    `json:"transactionId,omitempty"`
	Reason         string    `json:"reason,omitempty"`
}

type SubmitRequest struct {
	SubscriptionID string
	MemberID       string
	Image          []byte
	MimeType       string
}

type Service interface {
	// Submit starts a verification for the pair. The verifier call runs in
	// the background; the returned snapshot is in scanning state.
	Submit(ctx context.Context, req SubmitRequest) (Flow, error)
	// Get returns the current snapshot; unknown pairs read as idle.
	Get(ctx context.Context, subscriptionID, memberID string) (Flow, error)
	// Accept commits the reviewed judgment into the payment lifecycle.
	Accept(ctx context.Context, subscriptionID, memberID string) (subdomain.ConfirmPaymentResponse, error)
	// Cancel returns a review or error flow to idle.
	Cancel(ctx context.Context, subscriptionID, memberID string) (Flow, error)
	// Close stops background timers. Pending verifier calls are abandoned.
	Close()
}

var (
	ErrVerificationInFlight = errors.New("verification_in_flight")
	ErrNotReviewable        = errors.New("no_result_to_accept")
	ErrNothingToCancel      = errors.New("no_flow_to_cancel")
)
