package repository

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/subshare/internal/clock"
	"github.com/smallbiznis/subshare/internal/subscription/domain"
	"github.com/smallbiznis/subshare/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSQLiteRepository(t *testing.T) domain.Repository {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&LedgerSnapshot{}))

	return NewRepository(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)),
	})
}

func TestLoadAllEmptyStore(t *testing.T) {
	repo := newSQLiteRepository(t)

	subs, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Nil(t, subs)
}

func TestSnapshotRoundTrip(t *testing.T) {
	repo := newSQLiteRepository(t)

	sub := domain.Subscription{
		ID:       "svc-1",
		Name:     "Netflix Premium",
		Price:    186000,
		Currency: "IDR",
		MaxSlots: 2,
		Members: []domain.Member{
			{
				ID:     "m-0",
				Name:   "Admin",
				Status: domain.MemberStatusPaid,
				PaymentHistory: []domain.PaymentRecord{{
					ID:            "p-1",
					Date:          time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
					Amount:        93000,
					Status:        domain.PaymentStatusPaid,
					Method:        domain.MethodOwner,
					TransactionID: "TX-OWNER-1",
					Sender:        "Admin",
				}},
				Expenses: []domain.Expense{{
					ID:       "e-1",
					Date:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
					Amount:   5000,
					Category: domain.ExpenseCategoryAddon,
				}},
			},
			{ID: "m-1", Status: domain.MemberStatusEmpty},
		},
	}

	_, err := repo.Update(context.Background(), func(subs []domain.Subscription) ([]domain.Subscription, error) {
		return append(subs, sub), nil
	})
	require.NoError(t, err)

	loaded, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, sub, loaded[0])
}

func TestUpdateReplacesSnapshotWholesale(t *testing.T) {
	repo := newSQLiteRepository(t)

	for _, id := range []string{"a", "b"} {
		_, err := repo.Update(context.Background(), func(subs []domain.Subscription) ([]domain.Subscription, error) {
			return append(subs, domain.Subscription{ID: id, Name: id}), nil
		})
		require.NoError(t, err)
	}

	next, err := repo.Update(context.Background(), func(subs []domain.Subscription) ([]domain.Subscription, error) {
		require.Len(t, subs, 2)
		return subs[:1], nil
	})
	require.NoError(t, err)
	require.Len(t, next, 1)

	loaded, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, "a", loaded[0].ID)
}

func TestMutatorErrorLeavesSnapshotUntouched(t *testing.T) {
	repo := newSQLiteRepository(t)

	_, err := repo.Update(context.Background(), func(subs []domain.Subscription) ([]domain.Subscription, error) {
		return append(subs, domain.Subscription{ID: "a"}), nil
	})
	require.NoError(t, err)

	_, err = repo.Update(context.Background(), func(subs []domain.Subscription) ([]domain.Subscription, error) {
		return nil, domain.ErrSubscriptionNotFound
	})
	require.ErrorIs(t, err, domain.ErrSubscriptionNotFound)

	loaded, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
}
