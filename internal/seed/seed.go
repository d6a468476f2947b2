// Package seed bootstraps the ledger with the starter subscription the
// original product ships with. It only runs against an empty store.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/subshare/internal/clock"
	"github.com/smallbiznis/subshare/internal/credentials"
	"github.com/smallbiznis/subshare/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	defaultServiceName  = "Netflix Premium"
	defaultServicePrice = 186000
	defaultServiceSlots = 5
	defaultCredentials  = "user@netflix.com | Pass: H3lloWorld"
	defaultInstructions = "Transfer ke BCA 8821992121 a/n Admin SubShare"
)

// EnsureDefaultService inserts the starter subscription when the ledger
// holds no subscriptions.
func EnsureDefaultService(repo domain.Repository, clk clock.Clock, log *zap.Logger) error {
	ctx := context.Background()

	seeded := false
	_, err := repo.Update(ctx, func(subs []domain.Subscription) ([]domain.Subscription, error) {
		if len(subs) > 0 {
			return subs, nil
		}
		seeded = true
		return []domain.Subscription{defaultService(clk.Now())}, nil
	})
	if err != nil {
		return err
	}

	if seeded {
		log.Info("default service seeded", zap.String("name", defaultServiceName))
	}
	return nil
}

func defaultService(now time.Time) domain.Subscription {
	members := make([]domain.Member, defaultServiceSlots)
	for i := range members {
		members[i] = domain.Member{
			ID:     fmt.Sprintf("m%d", i+1),
			Status: domain.MemberStatusEmpty,
		}
	}
	members[0] = domain.Member{
		ID:     "m1",
		Name:   "Admin",
		Status: domain.MemberStatusPaid,
		PaymentHistory: []domain.PaymentRecord{{
			ID:            "init-1",
			Date:          now,
			Amount:        float64(defaultServicePrice) / float64(defaultServiceSlots),
			Status:        domain.PaymentStatusPaid,
			Method:        domain.MethodOwner,
			Sender:        "Admin",
			TransactionID: "TX-ADMIN-INIT",
		}},
	}
	members[1] = domain.Member{
		ID:     "m2",
		Name:   "Budi Santoso",
		Status: domain.MemberStatusPending,
	}

	return domain.Subscription{
		ID:                  "1",
		Code:                "netflix-premium",
		Name:                defaultServiceName,
		Price:               defaultServicePrice,
		Currency:            "IDR",
		MaxSlots:            defaultServiceSlots,
		RenewalDate:         now.AddDate(0, 0, 10).Format("2006-01-02"),
		Credentials:         credentials.Encode(defaultCredentials),
		PaymentInstructions: defaultInstructions,
		Members:             members,
	}
}

var Module = fx.Module("seed",
	fx.Invoke(func(repo domain.Repository, clk clock.Clock, log *zap.Logger) error {
		return EnsureDefaultService(repo, clk, log.Named("seed"))
	}),
)
