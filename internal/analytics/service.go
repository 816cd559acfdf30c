package analytics

import (
	"context"
	"fmt"
)

const (
	// DefaultSummaryDays is the clicks-by-day window for summaries.
	DefaultSummaryDays = 30

	// DefaultPageLimit caps detailed pages when the caller asks for none.
	DefaultPageLimit = 50
)

// Summary aggregates visit statistics for one code.
type Summary struct {
	ClicksByDate []DayCount      `json:"clicksByDate"`
	TopLocations []LocationCount `json:"topLocations"`
	BrowserStats []BrowserCount  `json:"browserStats"`
}

// DetailedPage is one page of raw visit events.
type DetailedPage struct {
	Data    []VisitEvent `json:"data"`
	Page    int          `json:"page"`
	Limit   int          `json:"limit"`
	HasMore bool         `json:"hasMore"`
}

// Service serves analytics reads for the HTTP layer.
type Service struct {
	query Query
}

// NewService creates an analytics query service.
func NewService(query Query) *Service {
	return &Service{query: query}
}

// Summary returns the aggregate view over the default day window.
func (s *Service) Summary(ctx context.Context, code string) (*Summary, error) {
	byDay, err := s.query.ClicksByDay(ctx, code, DefaultSummaryDays)
	if err != nil {
		return nil, fmt.Errorf("clicks by day: %w", err)
	}

	byLocation, err := s.query.ClicksByLocation(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("clicks by location: %w", err)
	}

	byBrowser, err := s.query.ClicksByBrowser(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("clicks by browser: %w", err)
	}

	return &Summary{
		ClicksByDate: byDay,
		TopLocations: byLocation,
		BrowserStats: byBrowser,
	}, nil
}

// Detailed returns one page of raw events. Page numbers start at 1.
func (s *Service) Detailed(ctx context.Context, code string, page, limit int) (*DetailedPage, error) {
	if page < 1 {
		page = 1
	}

	if limit <= 0 {
		limit = DefaultPageLimit
	}

	offset := (page - 1) * limit

	events, err := s.query.Visits(ctx, code, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("visits: %w", err)
	}

	return &DetailedPage{
		Data:    events,
		Page:    page,
		Limit:   limit,
		HasMore: len(events) == limit,
	}, nil
}
