package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/smallbiznis/subshare/internal/clock"
	"github.com/smallbiznis/subshare/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Namespace keys the snapshot row. Kept identical to the storage key of the
// original browser build so exported payloads stay interchangeable.
const Namespace = "subshare_v13_services"

// LedgerSnapshot is the single-row wholesale persistence model: the full
// subscription collection serialized as one JSON payload.
type LedgerSnapshot struct {
	Namespace string         `gorm:"primaryKey;column:namespace"`
	Payload   datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

// TableName sets the database table name.
func (LedgerSnapshot) TableName() string { return "ledger_snapshots" }

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Repository struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock

	// mu serializes read-modify-write cycles. Commands are dispatched by a
	// single logical actor; this enforces it at the store boundary.
	mu sync.Mutex
}

func NewRepository(p Params) domain.Repository {
	return &Repository{
		db:    p.DB,
		log:   p.Log.Named("subscription.repository"),
		clock: p.Clock,
	}
}

func (r *Repository) LoadAll(ctx context.Context) ([]domain.Subscription, error) {
	var row LedgerSnapshot
	err := r.db.WithContext(ctx).First(&row, "namespace = ?", Namespace).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var subs []domain.Subscription
	if err := json.Unmarshal(row.Payload, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *Repository) Update(ctx context.Context, mutate domain.Mutator) ([]domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	next, err := mutate(subs)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(next)
	if err != nil {
		return nil, err
	}

	row := LedgerSnapshot{
		Namespace: Namespace,
		Payload:   payload,
		UpdatedAt: r.clock.Now(),
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}},
		UpdateAll: true,
	}).Create(&row).Error; err != nil {
		return nil, err
	}

	return next, nil
}
