package shortener

import (
	"context"
	"time"
)

// Repository is the durable store for mappings. Implementations must be
// immediately consistent with respect to their own reads; the cache layer
// above never substitutes for the uniqueness or atomicity guarantees here.
type Repository interface {
	// Create inserts a new mapping. It returns ErrCodeTaken when any
	// record with that code exists, live or soft-deleted. Callers treat
	// that as a retry signal for generated codes.
	Create(ctx context.Context, code, targetURL string, expiresAt *time.Time) (*Mapping, error)

	// FindLive returns the mapping only if it is live (see Mapping.Live).
	// Returns ErrNotFound otherwise.
	FindLive(ctx context.Context, code string) (*Mapping, error)

	// IncrementClicks atomically bumps the click counter and updated_at,
	// returning the new count. Returns ErrNotFound for unknown codes.
	IncrementClicks(ctx context.Context, code string) (int64, error)

	// SoftDelete marks the mapping deleted. owner, when non-empty,
	// restricts the delete to records created by that owner. The bool
	// reports whether a record was affected.
	SoftDelete(ctx context.Context, code, owner string) (bool, error)

	// Stats returns the aggregate projection for a live mapping, or
	// ErrNotFound.
	Stats(ctx context.Context, code string) (*Stats, error)
}
