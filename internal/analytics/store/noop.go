// Package store holds analytics store implementations that do not belong
// to the main Postgres store.
package store

import (
	"context"

	"github.com/serroba/shortlink-go/internal/analytics"
	"go.uber.org/zap"
)

// Noop is an analytics.Store that only logs events. Used when the
// consumer runs without a database.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveVisit(_ context.Context, event *analytics.VisitEvent) error {
	n.logger.Info("visit event received",
		zap.String("code", event.Code),
		zap.String("country", event.Country),
		zap.String("browser", event.Browser),
		zap.Time("occurredAt", event.OccurredAt),
	)

	return nil
}

// Compile-time check.
var _ analytics.Store = (*Noop)(nil)
