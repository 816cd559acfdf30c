package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/shortlink-go/internal/analytics"
	"github.com/serroba/shortlink-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedVisits(t *testing.T, mem *store.Memory, code string, count int) {
	t.Helper()

	now := time.Now()
	for i := 0; i < count; i++ {
		err := mem.SaveVisit(context.Background(), &analytics.VisitEvent{
			Code:       code,
			Browser:    "Firefox",
			Country:    "Germany",
			City:       "Berlin",
			OccurredAt: now.Add(-time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
}

func TestSummary(t *testing.T) {
	t.Run("aggregates all three views", func(t *testing.T) {
		mem := store.NewMemory()
		seedVisits(t, mem, "abc123", 4)
		svc := analytics.NewService(mem)

		summary, err := svc.Summary(context.Background(), "abc123")

		require.NoError(t, err)
		require.Len(t, summary.TopLocations, 1)
		assert.Equal(t, int64(4), summary.TopLocations[0].Clicks)
		require.Len(t, summary.BrowserStats, 1)
		assert.Equal(t, "Firefox", summary.BrowserStats[0].Browser)
		assert.NotEmpty(t, summary.ClicksByDate)
	})

	t.Run("empty for codes with no visits", func(t *testing.T) {
		svc := analytics.NewService(store.NewMemory())

		summary, err := svc.Summary(context.Background(), "missing")

		require.NoError(t, err)
		assert.Empty(t, summary.ClicksByDate)
		assert.Empty(t, summary.TopLocations)
		assert.Empty(t, summary.BrowserStats)
	})
}

func TestDetailed(t *testing.T) {
	t.Run("paginates with has-more flag", func(t *testing.T) {
		mem := store.NewMemory()
		seedVisits(t, mem, "abc123", 5)
		svc := analytics.NewService(mem)

		page, err := svc.Detailed(context.Background(), "abc123", 1, 2)
		require.NoError(t, err)
		assert.Len(t, page.Data, 2)
		assert.Equal(t, 1, page.Page)
		assert.True(t, page.HasMore)

		page, err = svc.Detailed(context.Background(), "abc123", 3, 2)
		require.NoError(t, err)
		assert.Len(t, page.Data, 1)
		assert.False(t, page.HasMore)
	})

	t.Run("defaults page and limit", func(t *testing.T) {
		mem := store.NewMemory()
		seedVisits(t, mem, "abc123", 3)
		svc := analytics.NewService(mem)

		page, err := svc.Detailed(context.Background(), "abc123", 0, 0)

		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, analytics.DefaultPageLimit, page.Limit)
		assert.Len(t, page.Data, 3)
	})
}

func TestVisitHandler(t *testing.T) {
	t.Run("persists the event", func(t *testing.T) {
		mem := store.NewMemory()
		handler := analytics.NewVisitHandler(mem)

		err := handler(context.Background(), &analytics.VisitEvent{
			Code:       "abc123",
			Browser:    "Firefox",
			OccurredAt: time.Now(),
		})
		require.NoError(t, err)

		visits, err := mem.Visits(context.Background(), "abc123", 10, 0)
		require.NoError(t, err)
		assert.Len(t, visits, 1)
	})
}
