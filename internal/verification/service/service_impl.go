package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/subshare/internal/config"
	obsmetrics "github.com/smallbiznis/subshare/internal/observability/metrics"
	"github.com/smallbiznis/subshare/internal/providers/ai"
	subdomain "github.com/smallbiznis/subshare/internal/subscription/domain"
	"github.com/smallbiznis/subshare/internal/verification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type flowKey struct {
	subscriptionID string
	memberID       string
}

type flowEntry struct {
	state domain.FlowState
	// attempt identifies one submission. A completion whose attempt is no
	// longer current is stale and discarded.
	attempt        string
	detectedAmount float64
	detectedSender string
	transactionID  string
	reason         string
	successTimer   *time.Timer
}

type Params struct {
	fx.In

	Lifecycle  subdomain.Service
	Verifier   ai.Verifier
	Settings   *config.SettingsHolder
	Log        *zap.Logger
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	lifecycle  subdomain.Service
	verifier   ai.Verifier
	settings   *config.SettingsHolder
	log        *zap.Logger
	obsMetrics *obsmetrics.Metrics

	mu    sync.Mutex
	flows map[flowKey]*flowEntry
}

func NewService(p Params) domain.Service {
	return &Service{
		lifecycle:  p.Lifecycle,
		verifier:   p.Verifier,
		settings:   p.Settings,
		log:        p.Log.Named("verification.service"),
		obsMetrics: p.ObsMetrics,
		flows:      make(map[flowKey]*flowEntry),
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (domain.Flow, error) {
	sub, err := s.lifecycle.Get(ctx, req.SubscriptionID)
	if err != nil {
		return domain.Flow{}, err
	}
	j := sub.FindMember(req.MemberID)
	if j == -1 {
		return domain.Flow{}, subdomain.ErrMemberNotFound
	}
	member := sub.Members[j]
	if member.Status == subdomain.MemberStatusEmpty {
		return domain.Flow{}, subdomain.ErrSlotEmpty
	}

	// The verifier checks against the unrounded per-member share, matching
	// what the stats roll-up considers collected.
	expectedAmount := sub.Price / float64(sub.MaxSlots)
	expectedSender := member.Name

	key := flowKey{req.SubscriptionID, req.MemberID}
	attempt := ulid.Make().String()

	s.mu.Lock()
	if entry, ok := s.flows[key]; ok {
		switch entry.state {
		case domain.FlowScanning, domain.FlowReview:
			s.mu.Unlock()
			return domain.Flow{}, domain.ErrVerificationInFlight
		case domain.FlowSuccess:
			if entry.successTimer != nil {
				entry.successTimer.Stop()
			}
		}
	}
	s.flows[key] = &flowEntry{
		state:   domain.FlowScanning,
		attempt: attempt,
		// Synthesized up front so the reference is stable for this
		// confirmation even when the verifier omits one.
		transactionID: "TX-" + strings.ToUpper(uuid.NewString()[:8]),
	}
	snapshot := s.snapshotLocked(key)
	s.mu.Unlock()

	go s.runVerification(key, attempt, ai.VerifyReceiptRequest{
		Image:          req.Image,
		MimeType:       req.MimeType,
		ExpectedAmount: expectedAmount,
		ExpectedSender: expectedSender,
	})

	s.log.Info("verification submitted",
		zap.String("subscription_id", req.SubscriptionID),
		zap.String("member_id", req.MemberID),
		zap.String("attempt", attempt),
	)
	return snapshot, nil
}

func (s *Service) runVerification(key flowKey, attempt string, req ai.VerifyReceiptRequest) {
	timeout := time.Duration(s.settings.Get().VerifierTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	judgment, err := s.verifier.VerifyReceipt(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.flows[key]
	if !ok || entry.attempt != attempt {
		s.log.Debug("stale verification result discarded",
			zap.String("subscription_id", key.subscriptionID),
			zap.String("member_id", key.memberID),
			zap.String("attempt", attempt),
		)
		return
	}

	switch {
	case err != nil:
		entry.state = domain.FlowError
		entry.reason = "Verifikasi gagal: " + err.Error()
		s.countOutcome("failed")
		s.log.Warn("verification call failed",
			zap.String("subscription_id", key.subscriptionID),
			zap.String("member_id", key.memberID),
			zap.Error(err),
		)
	case !judgment.Valid:
		entry.state = domain.FlowError
		entry.reason = judgment.Reason
		s.countOutcome("rejected")
	default:
		entry.state = domain.FlowReview
		entry.detectedAmount = judgment.DetectedAmount
		entry.detectedSender = judgment.DetectedSender
		if txID := strings.TrimSpace(judgment.TransactionID); txID != "" {
			entry.transactionID = txID
		}
	}
}

func (s *Service) Get(ctx context.Context, subscriptionID, memberID string) (domain.Flow, error) {
	key := flowKey{subscriptionID, memberID}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(key), nil
}

func (s *Service) Accept(ctx context.Context, subscriptionID, memberID string) (subdomain.ConfirmPaymentResponse, error) {
	key := flowKey{subscriptionID, memberID}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.flows[key]
	if !ok || entry.state != domain.FlowReview {
		return subdomain.ConfirmPaymentResponse{}, domain.ErrNotReviewable
	}

	resp, err := s.lifecycle.ConfirmPayment(ctx, subdomain.ConfirmPaymentRequest{
		SubscriptionID: subscriptionID,
		MemberID:       memberID,
		Amount:         entry.detectedAmount,
		Sender:         entry.detectedSender,
		TransactionID:  entry.transactionID,
		Provenance:     subdomain.ProvenanceVerifier,
	})
	if err != nil {
		return subdomain.ConfirmPaymentResponse{}, err
	}

	attempt := entry.attempt
	entry.state = domain.FlowSuccess
	delay := time.Duration(s.settings.Get().SuccessDisplayMillis) * time.Millisecond
	entry.successTimer = time.AfterFunc(delay, func() {
		s.resetAfterSuccess(key, attempt)
	})

	s.countOutcome("accepted")
	s.log.Info("verification accepted",
		zap.String("subscription_id", subscriptionID),
		zap.String("member_id", memberID),
		zap.Float64("amount", entry.detectedAmount),
		zap.String("transaction_id", entry.transactionID),
		zap.Bool("fee_mismatch", resp.FeeMismatch),
	)
	return resp, nil
}

func (s *Service) Cancel(ctx context.Context, subscriptionID, memberID string) (domain.Flow, error) {
	key := flowKey{subscriptionID, memberID}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.flows[key]
	if !ok {
		return domain.Flow{}, domain.ErrNothingToCancel
	}
	switch entry.state {
	case domain.FlowReview, domain.FlowError:
		delete(s.flows, key)
		return s.snapshotLocked(key), nil
	default:
		return domain.Flow{}, domain.ErrNothingToCancel
	}
}

func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.flows {
		if entry.successTimer != nil {
			entry.successTimer.Stop()
		}
	}
}

func (s *Service) resetAfterSuccess(key flowKey, attempt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.flows[key]
	if !ok || entry.attempt != attempt || entry.state != domain.FlowSuccess {
		return
	}
	delete(s.flows, key)
}

func (s *Service) snapshotLocked(key flowKey) domain.Flow {
	flow := domain.Flow{
		SubscriptionID: key.subscriptionID,
		MemberID:       key.memberID,
		State:          domain.FlowIdle,
	}
	entry, ok := s.flows[key]
	if !ok {
		return flow
	}
	flow.State = entry.state
	flow.Reason = entry.reason
	if entry.state == domain.FlowReview || entry.state == domain.FlowSuccess {
		flow.DetectedAmount = entry.detectedAmount
		flow.DetectedSender = entry.detectedSender
		flow.TransactionID = entry.transactionID
	}
	return flow
}

func (s *Service) countOutcome(outcome string) {
	if s.obsMetrics != nil {
		s.obsMetrics.VerificationFinished(outcome)
	}
}
