package analytics

import (
	"context"

	"github.com/serroba/shortlink-go/internal/messaging"
)

// NewVisitHandler returns the consumer-side handler that persists visit
// events. Returning an error nacks the message for redelivery.
func NewVisitHandler(store Store) messaging.Handler[VisitEvent] {
	return func(ctx context.Context, event *VisitEvent) error {
		return store.SaveVisit(ctx, event)
	}
}
