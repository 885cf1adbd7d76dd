package repository

import (
	"context"

	"github.com/bafoyewv/SupplyChainLite-sub000/internal/domain"
)

// DraftRepository defines the interface for draft order persistence.
type DraftRepository interface {
	// Get retrieves a draft by its user ID.
	Get(ctx context.Context, userID string) (*domain.Draft, error)

	// Save persists a draft, overwriting any existing draft for the user.
	Save(ctx context.Context, draft *domain.Draft) error

	// SaveIfVersion persists a draft only if the stored version still equals
	// expectedVersion. A stale version yields a conflict error so callers can
	// re-read and retry.
	SaveIfVersion(ctx context.Context, draft *domain.Draft, expectedVersion int64) error

	// Delete removes a draft from the store by user ID.
	Delete(ctx context.Context, userID string) error
}
