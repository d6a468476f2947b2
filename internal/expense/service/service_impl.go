package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/subshare/internal/clock"
	"github.com/smallbiznis/subshare/internal/expense/domain"
	subdomain "github.com/smallbiznis/subshare/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Repo  subdomain.Repository
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	repo  subdomain.Repository
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) domain.Service {
	return &Service{
		repo:  p.Repo,
		log:   p.Log.Named("expense.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) Add(ctx context.Context, req domain.AddExpenseRequest) (subdomain.Member, error) {
	if !subdomain.ValidExpenseCategory(req.Category) {
		return subdomain.Member{}, domain.ErrInvalidCategory
	}
	if req.Amount <= 0 {
		return subdomain.Member{}, domain.ErrInvalidAmount
	}

	expense := subdomain.Expense{
		ID:          fmt.Sprintf("e-%s", s.genID.Generate()),
		Date:        s.clock.Now(),
		Amount:      req.Amount,
		Category:    req.Category,
		Description: strings.TrimSpace(req.Description),
	}

	var updated subdomain.Member
	_, err := s.repo.Update(ctx, func(subs []subdomain.Subscription) ([]subdomain.Subscription, error) {
		member, err := locateMember(subs, req.SubscriptionID, req.MemberID)
		if err != nil {
			return nil, err
		}
		member.Expenses = append([]subdomain.Expense{expense}, member.Expenses...)
		updated = *member
		return subs, nil
	})
	if err != nil {
		return subdomain.Member{}, err
	}

	s.log.Info("expense added",
		zap.String("subscription_id", req.SubscriptionID),
		zap.String("member_id", req.MemberID),
		zap.String("category", string(req.Category)),
		zap.Float64("amount", req.Amount),
	)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, subscriptionID, memberID, expenseID string) (subdomain.Member, error) {
	var updated subdomain.Member
	_, err := s.repo.Update(ctx, func(subs []subdomain.Subscription) ([]subdomain.Subscription, error) {
		member, err := locateMember(subs, subscriptionID, memberID)
		if err != nil {
			return nil, err
		}
		next := member.Expenses[:0:0]
		for _, e := range member.Expenses {
			if e.ID == expenseID {
				continue
			}
			next = append(next, e)
		}
		member.Expenses = next
		updated = *member
		return subs, nil
	})
	if err != nil {
		return subdomain.Member{}, err
	}
	return updated, nil
}

func locateMember(subs []subdomain.Subscription, subscriptionID, memberID string) (*subdomain.Member, error) {
	for i := range subs {
		if subs[i].ID != subscriptionID {
			continue
		}
		j := subs[i].FindMember(memberID)
		if j == -1 {
			return nil, subdomain.ErrMemberNotFound
		}
		return &subs[i].Members[j], nil
	}
	return nil, subdomain.ErrSubscriptionNotFound
}
