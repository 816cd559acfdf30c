// Package shortener holds the core domain model and the resolution service
// that coordinates the durable store, the cache, and the analytics pipeline.
package shortener

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the code does not resolve to a live mapping.
	ErrNotFound = errors.New("short url not found")

	// ErrCodeTaken indicates a create collided with an existing code,
	// live or soft-deleted. For custom codes this is terminal; for
	// generated codes the service retries with a fresh candidate.
	ErrCodeTaken = errors.New("short code already exists")

	// ErrGenerationExhausted indicates the create retry budget ran out
	// without finding a free code.
	ErrGenerationExhausted = errors.New("unable to generate unique short code")
)

// ValidationError describes invalid user input with a user-facing message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Mapping is the durable record behind a short code. The store owns it;
// the cache only ever holds derived projections.
type Mapping struct {
	Code       string
	TargetURL  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ExpiresAt  *time.Time // nil = never expires
	ClickCount int64
	DeletedAt  *time.Time // nil = not deleted
}

// Live reports whether the mapping is resolvable at the given instant:
// not soft-deleted and not past its expiry.
func (m *Mapping) Live(now time.Time) bool {
	if m.DeletedAt != nil {
		return false
	}

	return m.ExpiresAt == nil || m.ExpiresAt.After(now)
}

// Stats is the aggregate projection served by GetStats.
type Stats struct {
	Code       string     `json:"code"`
	TargetURL  string     `json:"originalUrl"`
	ClickCount int64      `json:"clickCount"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  *time.Time `json:"expirationDate,omitempty"`
}
