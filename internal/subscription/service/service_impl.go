package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/subshare/internal/clock"
	"github.com/smallbiznis/subshare/internal/credentials"
	obsmetrics "github.com/smallbiznis/subshare/internal/observability/metrics"
	"github.com/smallbiznis/subshare/internal/providers/ai"
	"github.com/smallbiznis/subshare/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const ownerName = "Admin"

type Params struct {
	fx.In

	Repo       domain.Repository
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Verifier   ai.Verifier
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	repo       domain.Repository
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	verifier   ai.Verifier
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		repo:       p.Repo,
		log:        p.Log.Named("subscription.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		verifier:   p.Verifier,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Subscription, error) {
	subs, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []domain.Subscription{}
	}
	return subs, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Subscription, error) {
	subs, err := s.repo.LoadAll(ctx)
	if err != nil {
		return domain.Subscription{}, err
	}
	for _, sub := range subs {
		if sub.ID == id {
			return sub, nil
		}
	}
	return domain.Subscription{}, domain.ErrSubscriptionNotFound
}

func (s *Service) Create(ctx context.Context, req domain.CreateSubscriptionRequest) (domain.Subscription, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Subscription{}, domain.ErrInvalidName
	}
	if req.Price <= 0 {
		return domain.Subscription{}, domain.ErrInvalidPrice
	}
	if req.MaxSlots <= 0 {
		return domain.Subscription{}, domain.ErrInvalidSlots
	}
	if _, err := time.Parse("2006-01-02", req.RenewalDate); err != nil {
		return domain.Subscription{}, domain.ErrInvalidRenewalDate
	}

	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		currency = "IDR"
	}

	sub := s.buildSubscription(name, req.Price, currency, req.MaxSlots, req.RenewalDate, req.Credentials, req.PaymentInstructions)

	if _, err := s.repo.Update(ctx, func(subs []domain.Subscription) ([]domain.Subscription, error) {
		return append(subs, sub), nil
	}); err != nil {
		return domain.Subscription{}, err
	}

	s.log.Info("subscription created",
		zap.String("subscription_id", sub.ID),
		zap.String("name", sub.Name),
		zap.Int("max_slots", sub.MaxSlots),
	)
	return sub, nil
}

func (s *Service) ImportFromScan(ctx context.Context, req domain.ImportScanRequest) (domain.Subscription, error) {
	scan, err := s.verifier.ScanBill(ctx, req.Image, req.MimeType)
	if err != nil {
		s.log.Warn("bill scan failed", zap.Error(err))
		return domain.Subscription{}, err
	}

	name := strings.TrimSpace(scan.ServiceName)
	if name == "" || scan.TotalPrice <= 0 || scan.MaxSlots <= 0 {
		return domain.Subscription{}, domain.ErrScanIncomplete
	}
	if _, err := time.Parse("2006-01-02", scan.RenewalDate); err != nil {
		return domain.Subscription{}, domain.ErrScanIncomplete
	}

	sub := s.buildSubscription(name, scan.TotalPrice, "IDR", scan.MaxSlots, scan.RenewalDate, "Belum diatur", "")

	if _, err := s.repo.Update(ctx, func(subs []domain.Subscription) ([]domain.Subscription, error) {
		return append(subs, sub), nil
	}); err != nil {
		return domain.Subscription{}, err
	}

	s.log.Info("subscription imported from scan",
		zap.String("subscription_id", sub.ID),
		zap.String("name", sub.Name),
	)
	return sub, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	found := false
	_, err := s.repo.Update(ctx, func(subs []domain.Subscription) ([]domain.Subscription, error) {
		next := make([]domain.Subscription, 0, len(subs))
		for _, sub := range subs {
			if sub.ID == id {
				found = true
				continue
			}
			next = append(next, sub)
		}
		if !found {
			return nil, domain.ErrSubscriptionNotFound
		}
		return next, nil
	})
	if err != nil {
		return err
	}

	s.log.Info("subscription deleted", zap.String("subscription_id", id))
	return nil
}

func (s *Service) UpdateInstructions(ctx context.Context, id, instructions string) (domain.Subscription, error) {
	var updated domain.Subscription
	_, err := s.repo.Update(ctx, func(subs []domain.Subscription) ([]domain.Subscription, error) {
		for i := range subs {
			if subs[i].ID != id {
				continue
			}
			subs[i].PaymentInstructions = strings.TrimSpace(instructions)
			updated = subs[i]
			return subs, nil
		}
		return nil, domain.ErrSubscriptionNotFound
	})
	if err != nil {
		return domain.Subscription{}, err
	}
	return updated, nil
}

// Claim moves an empty slot to pending. Blank names and occupied slots are
// rejected with no state change.
func (s *Service) Claim(ctx context.Context, req domain.ClaimRequest) (domain.Subscription, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Subscription{}, domain.ErrInvalidName
	}

	var updated domain.Subscription
	_, err := s.repo.Update(ctx, func(subs []domain.Subscription) ([]domain.Subscription, error) {
		i, j, err := locateMember(subs, req.SubscriptionID, req.MemberID)
		if err != nil {
			return nil, err
		}
		member := &subs[i].Members[j]
		if member.Status != domain.MemberStatusEmpty {
			return nil, domain.ErrSlotOccupied
		}
		member.Name = name
		member.Status = domain.MemberStatusPending
		updated = subs[i]
		return subs, nil
	})
	if err != nil {
		return domain.Subscription{}, err
	}

	s.log.Info("slot claimed",
		zap.String("subscription_id", req.SubscriptionID),
		zap.String("member_id", req.MemberID),
	)
	return updated, nil
}

// ConfirmPayment prepends a payment record and marks the member paid. The
// amount is trusted as given; divergence from the computed per-slot fee is
// surfaced via FeeMismatch, never enforced.
func (s *Service) ConfirmPayment(ctx context.Context, req domain.ConfirmPaymentRequest) (domain.ConfirmPaymentResponse, error) {
	if req.Amount <= 0 {
		return domain.ConfirmPaymentResponse{}, domain.ErrInvalidAmount
	}

	var resp domain.ConfirmPaymentResponse
	_, err := s.repo.Update(ctx, func(subs []domain.Subscription) ([]domain.Subscription, error) {
		i, j, err := locateMember(subs, req.SubscriptionID, req.MemberID)
		if err != nil {
			return nil, err
		}
		sub := &subs[i]
		member := &sub.Members[j]
		if member.Status == domain.MemberStatusEmpty {
			return nil, domain.ErrSlotEmpty
		}

		if member.Status == domain.MemberStatusPaid && !materiallyNew(*member, req.TransactionID) {
			resp = domain.ConfirmPaymentResponse{Record: *member, Applied: false}
			return subs, nil
		}

		sender := strings.TrimSpace(req.Sender)
		if sender == "" {
			sender = member.Name
		}
		txID := strings.TrimSpace(req.TransactionID)
		if txID == "" {
			txID = fmt.Sprintf("TX-M-%s", s.genID.Generate())
		}

		record := domain.PaymentRecord{
			ID:            fmt.Sprintf("p-%s", s.genID.Generate()),
			Date:          s.clock.Now(),
			Amount:        req.Amount,
			Status:        domain.PaymentStatusPaid,
			Method:        methodLabel(req.Provenance),
			TransactionID: txID,
			Sender:        sender,
		}
		member.PaymentHistory = append([]domain.PaymentRecord{record}, member.PaymentHistory...)
		member.Status = domain.MemberStatusPaid

		resp = domain.ConfirmPaymentResponse{
			Record:      *member,
			Applied:     true,
			FeeMismatch: req.Amount != sub.PerSlotFee(),
		}
		return subs, nil
	})
	if err != nil {
		return domain.ConfirmPaymentResponse{}, err
	}

	if resp.Applied {
		if s.obsMetrics != nil {
			s.obsMetrics.PaymentConfirmed(methodLabel(req.Provenance))
		}
		s.log.Info("payment confirmed",
			zap.String("subscription_id", req.SubscriptionID),
			zap.String("member_id", req.MemberID),
			zap.Float64("amount", req.Amount),
			zap.String("method", methodLabel(req.Provenance)),
			zap.Bool("fee_mismatch", resp.FeeMismatch),
		)
	}
	return resp, nil
}

// ManualConfirm is the admin path: amount is the computed per-slot fee and
// the sender defaults to the member's own name.
func (s *Service) ManualConfirm(ctx context.Context, subscriptionID, memberID string) (domain.ConfirmPaymentResponse, error) {
	sub, err := s.Get(ctx, subscriptionID)
	if err != nil {
		return domain.ConfirmPaymentResponse{}, err
	}
	return s.ConfirmPayment(ctx, domain.ConfirmPaymentRequest{
		SubscriptionID: subscriptionID,
		MemberID:       memberID,
		Amount:         sub.PerSlotFee(),
		Provenance:     domain.ProvenanceManual,
	})
}

// Downgrade is the admin correction path. Status only advances forward in
// normal operation; this walks it back, and a downgrade to empty vacates the
// slot entirely to keep the empty-slot invariant.
func (s *Service) Downgrade(ctx context.Context, req domain.DowngradeRequest) (domain.Subscription, error) {
	var updated domain.Subscription
	_, err := s.repo.Update(ctx, func(subs []domain.Subscription) ([]domain.Subscription, error) {
		i, j, err := locateMember(subs, req.SubscriptionID, req.MemberID)
		if err != nil {
			return nil, err
		}
		member := &subs[i].Members[j]
		if statusRank(req.Target) >= statusRank(member.Status) {
			return nil, domain.ErrInvalidTarget
		}

		switch req.Target {
		case domain.MemberStatusPending:
			member.Status = domain.MemberStatusPending
		case domain.MemberStatusEmpty:
			member.Name = ""
			member.Status = domain.MemberStatusEmpty
			member.PaymentHistory = nil
			member.Expenses = nil
		default:
			return nil, domain.ErrInvalidTarget
		}
		updated = subs[i]
		return subs, nil
	})
	if err != nil {
		return domain.Subscription{}, err
	}

	s.log.Info("member downgraded",
		zap.String("subscription_id", req.SubscriptionID),
		zap.String("member_id", req.MemberID),
		zap.String("target", string(req.Target)),
	)
	return updated, nil
}

func (s *Service) buildSubscription(name string, price float64, currency string, maxSlots int, renewalDate, creds, instructions string) domain.Subscription {
	id := s.genID.Generate().String()
	members := make([]domain.Member, maxSlots)
	for i := range members {
		members[i] = domain.Member{
			ID:             fmt.Sprintf("m-%s-%d", id, i),
			Status:         domain.MemberStatusEmpty,
			PaymentHistory: nil,
			Expenses:       nil,
		}
	}

	// Slot 0 is the owner, seeded paid with the unrounded share.
	members[0].Name = ownerName
	members[0].Status = domain.MemberStatusPaid
	members[0].PaymentHistory = []domain.PaymentRecord{{
		ID:            fmt.Sprintf("p-%s", s.genID.Generate()),
		Date:          s.clock.Now(),
		Amount:        price / float64(maxSlots),
		Status:        domain.PaymentStatusPaid,
		Method:        domain.MethodOwner,
		Sender:        ownerName,
		TransactionID: fmt.Sprintf("TX-OWNER-%s", id),
	}}

	return domain.Subscription{
		ID:                  id,
		Code:                slug.Make(name),
		Name:                name,
		Price:               price,
		Currency:            currency,
		MaxSlots:            maxSlots,
		RenewalDate:         renewalDate,
		Credentials:         credentials.Encode(creds),
		PaymentInstructions: strings.TrimSpace(instructions),
		Members:             members,
	}
}

func methodLabel(p domain.Provenance) string {
	switch p {
	case domain.ProvenanceVerifier:
		return domain.MethodAIVerified
	case domain.ProvenanceOwner:
		return domain.MethodOwner
	default:
		return domain.MethodManual
	}
}

// materiallyNew reports whether a confirmation on a paid member carries a
// transaction reference not already present in the history.
func materiallyNew(member domain.Member, transactionID string) bool {
	txID := strings.TrimSpace(transactionID)
	if txID == "" {
		return false
	}
	for _, rec := range member.PaymentHistory {
		if rec.TransactionID == txID {
			return false
		}
	}
	return true
}

func statusRank(s domain.MemberStatus) int {
	switch s {
	case domain.MemberStatusPending:
		return 1
	case domain.MemberStatusPaid:
		return 2
	default:
		return 0
	}
}

func locateMember(subs []domain.Subscription, subscriptionID, memberID string) (int, int, error) {
	for i := range subs {
		if subs[i].ID != subscriptionID {
			continue
		}
		j := subs[i].FindMember(memberID)
		if j == -1 {
			return 0, 0, domain.ErrMemberNotFound
		}
		return i, j, nil
	}
	return 0, 0, domain.ErrSubscriptionNotFound
}
