package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/subshare/internal/clock"
	"github.com/smallbiznis/subshare/internal/providers/ai"
	"github.com/smallbiznis/subshare/internal/reminder/domain"
	subdomain "github.com/smallbiznis/subshare/internal/subscription/domain"
	"github.com/smallbiznis/subshare/internal/subscription/repository"
	subservice "github.com/smallbiznis/subshare/internal/subscription/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGenerator struct {
	prompt string
	text   string
	err    error
}

func (f *fakeGenerator) ScanBill(ctx context.Context, image []byte, mimeType string) (ai.BillScan, error) {
	return ai.BillScan{}, ai.ErrMalformedResponse
}

func (f *fakeGenerator) VerifyReceipt(ctx context.Context, req ai.VerifyReceiptRequest) (ai.ReceiptJudgment, error) {
	return ai.ReceiptJudgment{}, ai.ErrMalformedResponse
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

func setup(t *testing.T) (domain.Service, subdomain.Service, *fakeGenerator, subdomain.Subscription) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	gen := &fakeGenerator{text: "Halo, jangan lupa iuran ya."}
	lifecycle := subservice.NewService(subservice.Params{
		Repo:     repository.NewMemory(),
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)),
		Verifier: gen,
	})

	sub, err := lifecycle.Create(context.Background(), subdomain.CreateSubscriptionRequest{
		Name:                "Netflix Premium",
		Price:               186000,
		MaxSlots:            5,
		RenewalDate:         "2026-03-25",
		PaymentInstructions: "Transfer BCA 1234567890",
	})
	require.NoError(t, err)

	svc := NewService(Params{Lifecycle: lifecycle, Verifier: gen, Log: zap.NewNop()})
	return svc, lifecycle, gen, sub
}

func TestGenerateReminderPrompt(t *testing.T) {
	svc, lifecycle, gen, sub := setup(t)

	for _, claim := range []struct{ memberID, name string }{
		{sub.Members[1].ID, "Budi"},
		{sub.Members[2].ID, "Citra"},
	} {
		_, err := lifecycle.Claim(context.Background(), subdomain.ClaimRequest{
			SubscriptionID: sub.ID,
			MemberID:       claim.memberID,
			Name:           claim.name,
		})
		require.NoError(t, err)
	}

	text, err := svc.Generate(context.Background(), sub.ID)
	require.NoError(t, err)
	require.Equal(t, "Halo, jangan lupa iuran ya.", text)
	require.Equal(t,
		"Buatkan pesan WhatsApp singkat, sopan, untuk menagih iuran Netflix Premium kepada Budi, Citra. Total: Rp 37200. Instruksi: Transfer BCA 1234567890.",
		gen.prompt,
	)
}

func TestGenerateReminderAllSettled(t *testing.T) {
	svc, _, _, sub := setup(t)

	_, err := svc.Generate(context.Background(), sub.ID)
	require.ErrorIs(t, err, domain.ErrAllSettled)
}

func TestGenerateReminderUnknownSubscription(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, err := svc.Generate(context.Background(), "nope")
	require.ErrorIs(t, err, subdomain.ErrSubscriptionNotFound)
}

func TestGenerateReminderModelFailure(t *testing.T) {
	svc, lifecycle, gen, sub := setup(t)
	gen.err = ai.ErrMalformedResponse

	_, err := lifecycle.Claim(context.Background(), subdomain.ClaimRequest{
		SubscriptionID: sub.ID,
		MemberID:       sub.Members[1].ID,
		Name:           "Budi",
	})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), sub.ID)
	require.ErrorIs(t, err, ai.ErrMalformedResponse)
}
