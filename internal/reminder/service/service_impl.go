package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/subshare/internal/providers/ai"
	"github.com/smallbiznis/subshare/internal/reminder/domain"
	subdomain "github.com/smallbiznis/subshare/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Lifecycle subdomain.Service
	Verifier  ai.Verifier
	Log       *zap.Logger
}

type Service struct {
	lifecycle subdomain.Service
	verifier  ai.Verifier
	log       *zap.Logger
}

func NewService(p Params) domain.Service {
	return &Service{
		lifecycle: p.Lifecycle,
		verifier:  p.Verifier,
		log:       p.Log.Named("reminder.service"),
	}
}

func (s *Service) Generate(ctx context.Context, subscriptionID string) (string, error) {
	sub, err := s.lifecycle.Get(ctx, subscriptionID)
	if err != nil {
		return "", err
	}

	var names []string
	for _, member := range sub.Members {
		if member.Status == subdomain.MemberStatusPending {
			names = append(names, member.Name)
		}
	}
	if len(names) == 0 {
		return "", domain.ErrAllSettled
	}

	prompt := fmt.Sprintf(
		"Buatkan pesan WhatsApp singkat, sopan, untuk menagih iuran %s kepada %s. Total: Rp %.0f. Instruksi: %s.",
		sub.Name,
		strings.Join(names, ", "),
		sub.PerSlotFee(),
		sub.PaymentInstructions,
	)

	text, err := s.verifier.GenerateText(ctx, prompt)
	if err != nil {
		s.log.Warn("reminder generation failed",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err),
		)
		return "", err
	}

	s.log.Info("reminder generated",
		zap.String("subscription_id", subscriptionID),
		zap.Int("pending_members", len(names)),
	)
	return text, nil
}
