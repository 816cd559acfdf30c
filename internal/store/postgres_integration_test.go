//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink-go/internal/analytics"
	"github.com/serroba/shortlink-go/internal/shortener"
	"github.com/serroba/shortlink-go/internal/store"
	"github.com/serroba/shortlink-go/internal/store/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestPostgres connects to the database named by POSTGRES_URL, applies
// migrations, and wipes both tables. Skips when the variable is unset.
func newTestPostgres(t *testing.T) *store.Postgres {
	t.Helper()

	databaseURL := os.Getenv("POSTGRES_URL")
	if databaseURL == "" {
		t.Skipf("POSTGRES_URL not set, skipping integration test")
	}

	migrator, err := migrations.New(databaseURL, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	pool, err := pgxpool.New(context.Background(), databaseURL)
	require.NoError(t, err)

	t.Cleanup(pool.Close)

	_, err = pool.Exec(context.Background(), "TRUNCATE urls, visits")
	require.NoError(t, err)

	return store.NewPostgres(pool)
}

func TestPostgresCreate(t *testing.T) {
	pg := newTestPostgres(t)

	t.Run("creates and finds a mapping", func(t *testing.T) {
		created, err := pg.Create(context.Background(), "itest001", "https://example.com", nil)
		require.NoError(t, err)
		assert.Equal(t, "itest001", created.Code)
		assert.False(t, created.CreatedAt.IsZero())

		found, err := pg.FindLive(context.Background(), "itest001")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", found.TargetURL)
	})

	t.Run("unique constraint maps to ErrCodeTaken", func(t *testing.T) {
		_, err := pg.Create(context.Background(), "itest002", "https://example.com", nil)
		require.NoError(t, err)

		_, err = pg.Create(context.Background(), "itest002", "https://other.example.com", nil)
		assert.ErrorIs(t, err, shortener.ErrCodeTaken)
	})

	t.Run("expired mapping is not live", func(t *testing.T) {
		past := time.Now().Add(-time.Minute)

		_, err := pg.Create(context.Background(), "itest003", "https://example.com", &past)
		require.NoError(t, err)

		_, err = pg.FindLive(context.Background(), "itest003")
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})
}

func TestPostgresClicksAndDelete(t *testing.T) {
	pg := newTestPostgres(t)

	t.Run("increments persist", func(t *testing.T) {
		_, err := pg.Create(context.Background(), "itest010", "https://example.com", nil)
		require.NoError(t, err)

		count, err := pg.IncrementClicks(context.Background(), "itest010")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		stats, err := pg.Stats(context.Background(), "itest010")
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.ClickCount)
	})

	t.Run("increment on unknown code returns not found", func(t *testing.T) {
		_, err := pg.IncrementClicks(context.Background(), "itestnone")
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("soft delete hides the mapping and keeps the code reserved", func(t *testing.T) {
		_, err := pg.Create(context.Background(), "itest011", "https://example.com", nil)
		require.NoError(t, err)

		deleted, err := pg.SoftDelete(context.Background(), "itest011", "")
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = pg.FindLive(context.Background(), "itest011")
		assert.ErrorIs(t, err, shortener.ErrNotFound)

		_, err = pg.Create(context.Background(), "itest011", "https://example.com", nil)
		assert.ErrorIs(t, err, shortener.ErrCodeTaken)

		deleted, err = pg.SoftDelete(context.Background(), "itest011", "")
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestPostgresVisits(t *testing.T) {
	pg := newTestPostgres(t)

	now := time.Now().UTC().Truncate(time.Second)

	events := []analytics.VisitEvent{
		{Code: "itest020", ClientIPHash: "hash1", Browser: "Firefox", Country: "Germany", City: "Berlin", OccurredAt: now},
		{Code: "itest020", ClientIPHash: "hash2", Browser: "Firefox", Country: "Germany", City: "Berlin", OccurredAt: now.Add(-time.Hour)},
		{Code: "itest020", ClientIPHash: "hash3", Browser: "Chrome", Country: "France", City: "Paris", OccurredAt: now.Add(-48 * time.Hour)},
	}
	for i := range events {
		require.NoError(t, pg.SaveVisit(context.Background(), &events[i]))
	}

	t.Run("clicks by day honors the window", func(t *testing.T) {
		counts, err := pg.ClicksByDay(context.Background(), "itest020", 1)
		require.NoError(t, err)

		var total int64
		for _, count := range counts {
			total += count.Clicks
		}

		assert.Equal(t, int64(2), total)
	})

	t.Run("clicks by browser aggregates", func(t *testing.T) {
		counts, err := pg.ClicksByBrowser(context.Background(), "itest020")
		require.NoError(t, err)
		require.Len(t, counts, 2)
		assert.Equal(t, "Firefox", counts[0].Browser)
		assert.Equal(t, int64(2), counts[0].Clicks)
	})

	t.Run("visits paginate newest first", func(t *testing.T) {
		page, err := pg.Visits(context.Background(), "itest020", 2, 0)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "hash1", page[0].ClientIPHash)

		page, err = pg.Visits(context.Background(), "itest020", 2, 2)
		require.NoError(t, err)
		assert.Len(t, page, 1)
	})
}
