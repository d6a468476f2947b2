package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/subshare/internal/clock"
	"github.com/smallbiznis/subshare/internal/config"
	"github.com/smallbiznis/subshare/internal/providers/ai"
	subdomain "github.com/smallbiznis/subshare/internal/subscription/domain"
	"github.com/smallbiznis/subshare/internal/subscription/repository"
	subservice "github.com/smallbiznis/subshare/internal/subscription/service"
	"github.com/smallbiznis/subshare/internal/verification/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVerifier struct {
	mu       sync.Mutex
	judgment ai.ReceiptJudgment
	err      error
	gate     chan struct{}
	lastReq  ai.VerifyReceiptRequest
}

func (f *fakeVerifier) ScanBill(ctx context.Context, image []byte, mimeType string) (ai.BillScan, error) {
	return ai.BillScan{}, ai.ErrMalformedResponse
}

func (f *fakeVerifier) VerifyReceipt(ctx context.Context, req ai.VerifyReceiptRequest) (ai.ReceiptJudgment, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = req
	return f.judgment, f.err
}

func (f *fakeVerifier) GenerateText(ctx context.Context, prompt string) (string, error) {
	return "", ai.ErrMalformedResponse
}

func (f *fakeVerifier) request() ai.VerifyReceiptRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

type fixture struct {
	svc       domain.Service
	lifecycle subdomain.Service
	verifier  *fakeVerifier
	sub       subdomain.Subscription
	memberID  string
}

func newFixture(t *testing.T, price float64, maxSlots int) *fixture {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	verifier := &fakeVerifier{}
	lifecycle := subservice.NewService(subservice.Params{
		Repo:     repository.NewMemory(),
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)),
		Verifier: verifier,
	})

	sub, err := lifecycle.Create(context.Background(), subdomain.CreateSubscriptionRequest{
		Name:        "Netflix Premium",
		Price:       price,
		MaxSlots:    maxSlots,
		RenewalDate: "2026-03-25",
		Credentials: "user@mail.com:rahasia",
	})
	require.NoError(t, err)

	memberID := sub.Members[1].ID
	_, err = lifecycle.Claim(context.Background(), subdomain.ClaimRequest{
		SubscriptionID: sub.ID,
		MemberID:       memberID,
		Name:           "Budi",
	})
	require.NoError(t, err)

	svc := NewService(Params{
		Lifecycle: lifecycle,
		Verifier:  verifier,
		Settings: config.NewStaticSettingsHolder(config.Settings{
			RevealSeconds:          10,
			SuccessDisplayMillis:   20,
			VerifierTimeoutSeconds: 5,
		}),
		Log: zap.NewNop(),
	})
	t.Cleanup(svc.Close)

	return &fixture{svc: svc, lifecycle: lifecycle, verifier: verifier, sub: sub, memberID: memberID}
}

func (f *fixture) submit(t *testing.T) domain.Flow {
	t.Helper()
	flow, err := f.svc.Submit(context.Background(), domain.SubmitRequest{
		SubscriptionID: f.sub.ID,
		MemberID:       f.memberID,
		Image:          []byte("receipt"),
		MimeType:       "image/png",
	})
	require.NoError(t, err)
	require.Equal(t, domain.FlowScanning, flow.State)
	return flow
}

func (f *fixture) waitForState(t *testing.T, want domain.FlowState) domain.Flow {
	t.Helper()
	var flow domain.Flow
	require.Eventually(t, func() bool {
		var err error
		flow, err = f.svc.Get(context.Background(), f.sub.ID, f.memberID)
		require.NoError(t, err)
		return flow.State == want
	}, time.Second, 5*time.Millisecond)
	return flow
}

func TestRejectedJudgmentEntersErrorWithoutRecord(t *testing.T) {
	f := newFixture(t, 186000, 5)
	f.verifier.judgment = ai.ReceiptJudgment{Valid: false, Reason: "amount mismatch"}

	f.submit(t)
	flow := f.waitForState(t, domain.FlowError)
	require.Equal(t, "amount mismatch", flow.Reason)

	sub, err := f.lifecycle.Get(context.Background(), f.sub.ID)
	require.NoError(t, err)
	member := sub.Members[sub.FindMember(f.memberID)]
	require.Equal(t, subdomain.MemberStatusPending, member.Status)
	require.Empty(t, member.PaymentHistory)
}

func TestAcceptCommitsVerifiedPayment(t *testing.T) {
	f := newFixture(t, 186000, 5)
	f.verifier.judgment = ai.ReceiptJudgment{
		Valid:          true,
		DetectedAmount: 37200,
		DetectedSender: "Budi",
		TransactionID:  "TX1",
	}

	f.submit(t)
	flow := f.waitForState(t, domain.FlowReview)
	require.Equal(t, float64(37200), flow.DetectedAmount)
	require.Equal(t, "Budi", flow.DetectedSender)
	require.Equal(t, "TX1", flow.TransactionID)

	resp, err := f.svc.Accept(context.Background(), f.sub.ID, f.memberID)
	require.NoError(t, err)
	require.True(t, resp.Applied)

	sub, err := f.lifecycle.Get(context.Background(), f.sub.ID)
	require.NoError(t, err)
	member := sub.Members[sub.FindMember(f.memberID)]
	require.Equal(t, subdomain.MemberStatusPaid, member.Status)
	require.Len(t, member.PaymentHistory, 1)
	require.Equal(t, "TX1", member.PaymentHistory[0].TransactionID)
	require.Equal(t, subdomain.MethodAIVerified, member.PaymentHistory[0].Method)
	require.Equal(t, float64(37200), member.PaymentHistory[0].Amount)

	f.waitForState(t, domain.FlowIdle)
}

func TestSynthesizedTransactionIDWhenVerifierOmitsOne(t *testing.T) {
	f := newFixture(t, 186000, 5)
	f.verifier.judgment = ai.ReceiptJudgment{
		Valid:          true,
		DetectedAmount: 37200,
		DetectedSender: "Budi",
	}

	f.submit(t)
	flow := f.waitForState(t, domain.FlowReview)
	require.Regexp(t, `^TX-[0-9A-F]{8}$`, flow.TransactionID)

	_, err := f.svc.Accept(context.Background(), f.sub.ID, f.memberID)
	require.NoError(t, err)

	sub, err := f.lifecycle.Get(context.Background(), f.sub.ID)
	require.NoError(t, err)
	member := sub.Members[sub.FindMember(f.memberID)]
	require.Equal(t, flow.TransactionID, member.PaymentHistory[0].TransactionID)
}

func TestSubmitWhileInFlightIsRejected(t *testing.T) {
	f := newFixture(t, 186000, 5)
	f.verifier.gate = make(chan struct{})
	f.verifier.judgment = ai.ReceiptJudgment{Valid: false, Reason: "x"}

	f.submit(t)
	_, err := f.svc.Submit(context.Background(), domain.SubmitRequest{
		SubscriptionID: f.sub.ID,
		MemberID:       f.memberID,
		Image:          []byte("receipt"),
		MimeType:       "image/png",
	})
	require.ErrorIs(t, err, domain.ErrVerificationInFlight)

	close(f.verifier.gate)
	f.waitForState(t, domain.FlowError)
}

func TestStaleCompletionIsDiscarded(t *testing.T) {
	f := newFixture(t, 186000, 5)
	f.verifier.judgment = ai.ReceiptJudgment{Valid: false, Reason: "first"}

	f.submit(t)
	f.waitForState(t, domain.FlowError)

	// A completion carrying an attempt id that is no longer current must not
	// touch the flow.
	impl := f.svc.(*Service)
	impl.runVerification(
		flowKey{f.sub.ID, f.memberID},
		"stale-attempt",
		ai.VerifyReceiptRequest{},
	)

	flow, err := f.svc.Get(context.Background(), f.sub.ID, f.memberID)
	require.NoError(t, err)
	require.Equal(t, domain.FlowError, flow.State)
	require.Equal(t, "first", flow.Reason)
}

func TestVerifierFailureEntersError(t *testing.T) {
	f := newFixture(t, 186000, 5)
	f.verifier.err = ai.ErrMalformedResponse

	f.submit(t)
	flow := f.waitForState(t, domain.FlowError)
	require.Contains(t, flow.Reason, "Verifikasi gagal")
}

func TestCancelFromReviewAndError(t *testing.T) {
	f := newFixture(t, 186000, 5)
	f.verifier.judgment = ai.ReceiptJudgment{Valid: false, Reason: "x"}

	f.submit(t)
	f.waitForState(t, domain.FlowError)

	flow, err := f.svc.Cancel(context.Background(), f.sub.ID, f.memberID)
	require.NoError(t, err)
	require.Equal(t, domain.FlowIdle, flow.State)

	_, err = f.svc.Cancel(context.Background(), f.sub.ID, f.memberID)
	require.ErrorIs(t, err, domain.ErrNothingToCancel)
}

func TestExpectedShareIsUnrounded(t *testing.T) {
	f := newFixture(t, 100000, 3)
	f.verifier.judgment = ai.ReceiptJudgment{Valid: false, Reason: "x"}

	f.submit(t)
	f.waitForState(t, domain.FlowError)

	req := f.verifier.request()
	require.InDelta(t, 100000.0/3.0, req.ExpectedAmount, 1e-9)
	require.Equal(t, "Budi", req.ExpectedSender)
}

func TestSubmitForEmptySlotRejected(t *testing.T) {
	f := newFixture(t, 186000, 5)

	_, err := f.svc.Submit(context.Background(), domain.SubmitRequest{
		SubscriptionID: f.sub.ID,
		MemberID:       f.sub.Members[2].ID,
		Image:          []byte("receipt"),
		MimeType:       "image/png",
	})
	require.ErrorIs(t, err, subdomain.ErrSlotEmpty)
}
