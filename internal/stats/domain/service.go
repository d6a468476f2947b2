// Package domain defines the read-only aggregate roll-up over the ledger.
package domain

import "context"

// Overview is recomputed from the full collection on every read. Collected
// totals use the unrounded price/maxSlots share, not the ceiling-rounded
// per-slot fee shown to members.
type Overview struct {
	TotalCost      float64   `json:"totalCost"`
	TotalCollected float64   `json:"totalCollected"`
	CollectionRate float64   `json:"collectionRate"`
	ActiveSeats    int       `json:"activeSeats"`
	TotalSlots     int       `json:"totalSlots"`
	Trend          []float64 `json:"trend"`
}

type Service interface {
	Overview(ctx context.Context) (Overview, error)
}
