package analytics

import "context"

// Store persists visit events. Implemented by the Postgres store and by
// the logging no-op store.
type Store interface {
	SaveVisit(ctx context.Context, event *VisitEvent) error
}

// Query serves aggregate and paginated reads over recorded visits.
type Query interface {
	// ClicksByDay returns daily visit counts for the last days days,
	// newest first.
	ClicksByDay(ctx context.Context, code string, days int) ([]DayCount, error)

	// ClicksByLocation returns visit counts grouped by country and city,
	// highest first, capped at 50 rows.
	ClicksByLocation(ctx context.Context, code string) ([]LocationCount, error)

	// ClicksByBrowser returns visit counts grouped by browser family,
	// highest first.
	ClicksByBrowser(ctx context.Context, code string) ([]BrowserCount, error)

	// Visits returns a page of raw events, newest first.
	Visits(ctx context.Context, code string, limit, offset int) ([]VisitEvent, error)
}
