package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/serroba/shortlink-go/internal/analytics"
	"github.com/serroba/shortlink-go/internal/shortener"
)

// Memory is an in-memory implementation of the shortener repository and
// the analytics store/query interfaces. It mirrors the Postgres semantics
// closely enough to serve unit tests: uniqueness across live and dead
// records, atomic increments, live-only reads.
type Memory struct {
	mu       sync.Mutex
	mappings map[string]*shortener.Mapping
	owners   map[string]string
	visits   []analytics.VisitEvent
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		mappings: make(map[string]*shortener.Mapping),
		owners:   make(map[string]string),
	}
}

func (m *Memory) Create(
	_ context.Context, code, targetURL string, expiresAt *time.Time,
) (*shortener.Mapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Soft-deleted records still hold their code.
	if _, exists := m.mappings[code]; exists {
		return nil, shortener.ErrCodeTaken
	}

	now := time.Now()
	mapping := &shortener.Mapping{
		Code:      code,
		TargetURL: targetURL,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: expiresAt,
	}
	m.mappings[code] = mapping

	clone := *mapping

	return &clone, nil
}

// SetOwner attributes an existing mapping to an owner. Test helper for
// owner-filtered deletes.
func (m *Memory) SetOwner(code, owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.owners[code] = owner
}

func (m *Memory) FindLive(_ context.Context, code string) (*shortener.Mapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mapping, ok := m.mappings[code]
	if !ok || !mapping.Live(time.Now()) {
		return nil, shortener.ErrNotFound
	}

	clone := *mapping

	return &clone, nil
}

func (m *Memory) IncrementClicks(_ context.Context, code string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mapping, ok := m.mappings[code]
	if !ok {
		return 0, shortener.ErrNotFound
	}

	mapping.ClickCount++
	mapping.UpdatedAt = time.Now()

	return mapping.ClickCount, nil
}

func (m *Memory) SoftDelete(_ context.Context, code, owner string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mapping, ok := m.mappings[code]
	if !ok || mapping.DeletedAt != nil {
		return false, nil
	}

	if owner != "" && m.owners[code] != owner {
		return false, nil
	}

	now := time.Now()
	mapping.DeletedAt = &now
	mapping.UpdatedAt = now

	return true, nil
}

func (m *Memory) Stats(_ context.Context, code string) (*shortener.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mapping, ok := m.mappings[code]
	if !ok || !mapping.Live(time.Now()) {
		return nil, shortener.ErrNotFound
	}

	return &shortener.Stats{
		Code:       mapping.Code,
		TargetURL:  mapping.TargetURL,
		ClickCount: mapping.ClickCount,
		CreatedAt:  mapping.CreatedAt,
		ExpiresAt:  mapping.ExpiresAt,
	}, nil
}

func (m *Memory) SaveVisit(_ context.Context, event *analytics.VisitEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.visits = append(m.visits, *event)

	return nil
}

func (m *Memory) ClicksByDay(_ context.Context, code string, days int) ([]analytics.DayCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -days)
	byDay := make(map[time.Time]int64)

	for _, visit := range m.visits {
		if visit.Code != code || visit.OccurredAt.Before(cutoff) {
			continue
		}

		day := visit.OccurredAt.Truncate(24 * time.Hour)
		byDay[day]++
	}

	counts := make([]analytics.DayCount, 0, len(byDay))
	for day, clicks := range byDay {
		counts = append(counts, analytics.DayCount{Date: day, Clicks: clicks})
	}

	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Date.After(counts[j].Date)
	})

	return counts, nil
}

func (m *Memory) ClicksByLocation(_ context.Context, code string) ([]analytics.LocationCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type key struct{ country, city string }

	byLocation := make(map[key]int64)

	for _, visit := range m.visits {
		if visit.Code == code {
			byLocation[key{visit.Country, visit.City}]++
		}
	}

	counts := make([]analytics.LocationCount, 0, len(byLocation))
	for k, clicks := range byLocation {
		counts = append(counts, analytics.LocationCount{
			Country: k.country,
			City:    k.city,
			Clicks:  clicks,
		})
	}

	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Clicks > counts[j].Clicks
	})

	if len(counts) > 50 {
		counts = counts[:50]
	}

	return counts, nil
}

func (m *Memory) ClicksByBrowser(_ context.Context, code string) ([]analytics.BrowserCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byBrowser := make(map[string]int64)

	for _, visit := range m.visits {
		if visit.Code == code {
			byBrowser[visit.Browser]++
		}
	}

	counts := make([]analytics.BrowserCount, 0, len(byBrowser))
	for browser, clicks := range byBrowser {
		counts = append(counts, analytics.BrowserCount{Browser: browser, Clicks: clicks})
	}

	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Clicks > counts[j].Clicks
	})

	return counts, nil
}

func (m *Memory) Visits(
	_ context.Context, code string, limit, offset int,
) ([]analytics.VisitEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]analytics.VisitEvent, 0)

	for _, visit := range m.visits {
		if visit.Code == code {
			matched = append(matched, visit)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})

	if offset >= len(matched) {
		return nil, nil
	}

	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

// Compile-time checks.
var (
	_ shortener.Repository = (*Memory)(nil)
	_ analytics.Store      = (*Memory)(nil)
	_ analytics.Query      = (*Memory)(nil)
)
