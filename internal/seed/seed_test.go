package seed

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/subshare/internal/clock"
	"github.com/smallbiznis/subshare/internal/credentials"
	"github.com/smallbiznis/subshare/internal/subscription/domain"
	"github.com/smallbiznis/subshare/internal/subscription/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEnsureDefaultServiceSeedsEmptyLedger(t *testing.T) {
	repo := repository.NewMemory()
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	require.NoError(t, EnsureDefaultService(repo, clk, zap.NewNop()))

	subs, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)

	sub := subs[0]
	require.Equal(t, "Netflix Premium", sub.Name)
	require.Equal(t, float64(186000), sub.Price)
	require.Equal(t, 5, sub.MaxSlots)
	require.Len(t, sub.Members, 5)
	require.Equal(t, domain.MemberStatusPaid, sub.Members[0].Status)
	require.Equal(t, "Budi Santoso", sub.Members[1].Name)
	require.Equal(t, domain.MemberStatusPending, sub.Members[1].Status)
	require.Equal(t, domain.MemberStatusEmpty, sub.Members[2].Status)
	require.Equal(t, "user@netflix.com | Pass: H3lloWorld", credentials.Decode(sub.Credentials))
	require.Equal(t, "2026-03-11", sub.RenewalDate)
}

func TestEnsureDefaultServiceLeavesExistingDataAlone(t *testing.T) {
	repo := repository.NewMemory()
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	_, err := repo.Update(context.Background(), func(_ []domain.Subscription) ([]domain.Subscription, error) {
		return []domain.Subscription{{ID: "custom", Name: "Spotify"}}, nil
	})
	require.NoError(t, err)

	require.NoError(t, EnsureDefaultService(repo, clk, zap.NewNop()))

	subs, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Equal(t, "Spotify", subs[0].Name)
}
