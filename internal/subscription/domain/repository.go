package domain

import "context"

// Mutator transforms the full subscription collection. It must return the
// complete new collection; the store replaces the snapshot wholesale.
type Mutator func(subs []Subscription) ([]Subscription, error)

// Repository is the Ledger Store boundary: the durable owner of all
// Subscription aggregates, persisted as a single snapshot. Update serializes
// read-modify-write cycles so every mutation is one atomic replacement.
type Repository interface {
	LoadAll(ctx context.Context) ([]Subscription, error)
	Update(ctx context.Context, mutate Mutator) ([]Subscription, error)
}
