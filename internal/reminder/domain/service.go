// Package domain defines reminder message generation for unpaid members.
package domain

import (
	"context"
	"errors"
)

type Service interface {
	// Generate composes a dunning message for every pending member of the
	// subscription via the text model. The raw model output is returned
	// untouched; there is nothing structured to parse.
	Generate(ctx context.Context, subscriptionID string) (string, error)
}

var ErrAllSettled = errors.New("all_members_settled")
