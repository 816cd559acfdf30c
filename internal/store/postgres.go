// Package store holds the durable implementations of the shortener
// repository and the analytics store.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink-go/internal/analytics"
	"github.com/serroba/shortlink-go/internal/shortener"
)

const uniqueViolation = "23505"

// Postgres is the PostgreSQL-backed source of truth for mappings and
// visit events. The unique constraint on urls.code is the final arbiter
// for code collisions; the service's retry loop leans on it.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store on an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Create(
	ctx context.Context, code, targetURL string, expiresAt *time.Time,
) (*shortener.Mapping, error) {
	query := `
		INSERT INTO urls (code, target_url, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING code, target_url, created_at, updated_at, expires_at, click_count, deleted_at
	`

	var mapping shortener.Mapping

	err := p.pool.QueryRow(ctx, query, code, targetURL, expiresAt).Scan(
		&mapping.Code,
		&mapping.TargetURL,
		&mapping.CreatedAt,
		&mapping.UpdatedAt,
		&mapping.ExpiresAt,
		&mapping.ClickCount,
		&mapping.DeletedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, shortener.ErrCodeTaken
		}

		return nil, fmt.Errorf("insert mapping: %w", err)
	}

	return &mapping, nil
}

func (p *Postgres) FindLive(ctx context.Context, code string) (*shortener.Mapping, error) {
	query := `
		SELECT code, target_url, created_at, updated_at, expires_at, click_count, deleted_at
		FROM urls
		WHERE code = $1
		  AND deleted_at IS NULL
		  AND (expires_at IS NULL OR expires_at > now())
	`

	var mapping shortener.Mapping

	err := p.pool.QueryRow(ctx, query, code).Scan(
		&mapping.Code,
		&mapping.TargetURL,
		&mapping.CreatedAt,
		&mapping.UpdatedAt,
		&mapping.ExpiresAt,
		&mapping.ClickCount,
		&mapping.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, fmt.Errorf("find mapping: %w", err)
	}

	return &mapping, nil
}

func (p *Postgres) IncrementClicks(ctx context.Context, code string) (int64, error) {
	query := `
		UPDATE urls
		SET click_count = click_count + 1, updated_at = now()
		WHERE code = $1
		RETURNING click_count
	`

	var count int64

	err := p.pool.QueryRow(ctx, query, code).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shortener.ErrNotFound
		}

		return 0, fmt.Errorf("increment clicks: %w", err)
	}

	return count, nil
}

func (p *Postgres) SoftDelete(ctx context.Context, code, owner string) (bool, error) {
	query := `
		UPDATE urls
		SET deleted_at = now(), updated_at = now()
		WHERE code = $1 AND deleted_at IS NULL
	`
	args := []any{code}

	if owner != "" {
		query += " AND created_by = $2"
		args = append(args, owner)
	}

	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("soft delete mapping: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (p *Postgres) Stats(ctx context.Context, code string) (*shortener.Stats, error) {
	query := `
		SELECT code, target_url, click_count, created_at, expires_at
		FROM urls
		WHERE code = $1
		  AND deleted_at IS NULL
		  AND (expires_at IS NULL OR expires_at > now())
	`

	var stats shortener.Stats

	err := p.pool.QueryRow(ctx, query, code).Scan(
		&stats.Code,
		&stats.TargetURL,
		&stats.ClickCount,
		&stats.CreatedAt,
		&stats.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, fmt.Errorf("mapping stats: %w", err)
	}

	return &stats, nil
}

func (p *Postgres) SaveVisit(ctx context.Context, event *analytics.VisitEvent) error {
	query := `
		INSERT INTO visits (
			code, client_ip_hash, user_agent, referrer,
			country, city, browser, os, device, occurred_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := p.pool.Exec(ctx, query,
		event.Code,
		event.ClientIPHash,
		event.UserAgent,
		event.Referrer,
		event.Country,
		event.City,
		event.Browser,
		event.OS,
		event.Device,
		event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}

	return nil
}

func (p *Postgres) ClicksByDay(ctx context.Context, code string, days int) ([]analytics.DayCount, error) {
	query := `
		SELECT date_trunc('day', occurred_at) AS day, COUNT(*) AS clicks
		FROM visits
		WHERE code = $1
		  AND occurred_at >= now() - make_interval(days => $2)
		GROUP BY day
		ORDER BY day DESC
	`

	rows, err := p.pool.Query(ctx, query, code, days)
	if err != nil {
		return nil, fmt.Errorf("clicks by day: %w", err)
	}
	defer rows.Close()

	var counts []analytics.DayCount

	for rows.Next() {
		var count analytics.DayCount
		if err := rows.Scan(&count.Date, &count.Clicks); err != nil {
			return nil, fmt.Errorf("scan day count: %w", err)
		}

		counts = append(counts, count)
	}

	return counts, rows.Err()
}

func (p *Postgres) ClicksByLocation(ctx context.Context, code string) ([]analytics.LocationCount, error) {
	query := `
		SELECT country, city, COUNT(*) AS clicks
		FROM visits
		WHERE code = $1
		GROUP BY country, city
		ORDER BY clicks DESC
		LIMIT 50
	`

	rows, err := p.pool.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("clicks by location: %w", err)
	}
	defer rows.Close()

	var counts []analytics.LocationCount

	for rows.Next() {
		var count analytics.LocationCount
		if err := rows.Scan(&count.Country, &count.City, &count.Clicks); err != nil {
			return nil, fmt.Errorf("scan location count: %w", err)
		}

		counts = append(counts, count)
	}

	return counts, rows.Err()
}

func (p *Postgres) ClicksByBrowser(ctx context.Context, code string) ([]analytics.BrowserCount, error) {
	query := `
		SELECT browser, COUNT(*) AS clicks
		FROM visits
		WHERE code = $1
		GROUP BY browser
		ORDER BY clicks DESC
	`

	rows, err := p.pool.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("clicks by browser: %w", err)
	}
	defer rows.Close()

	var counts []analytics.BrowserCount

	for rows.Next() {
		var count analytics.BrowserCount
		if err := rows.Scan(&count.Browser, &count.Clicks); err != nil {
			return nil, fmt.Errorf("scan browser count: %w", err)
		}

		counts = append(counts, count)
	}

	return counts, rows.Err()
}

func (p *Postgres) Visits(
	ctx context.Context, code string, limit, offset int,
) ([]analytics.VisitEvent, error) {
	query := `
		SELECT code, client_ip_hash, user_agent, referrer,
		       country, city, browser, os, device, occurred_at
		FROM visits
		WHERE code = $1
		ORDER BY occurred_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.pool.Query(ctx, query, code, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("visits page: %w", err)
	}
	defer rows.Close()

	var events []analytics.VisitEvent

	for rows.Next() {
		var event analytics.VisitEvent
		if err := rows.Scan(
			&event.Code,
			&event.ClientIPHash,
			&event.UserAgent,
			&event.Referrer,
			&event.Country,
			&event.City,
			&event.Browser,
			&event.OS,
			&event.Device,
			&event.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}

		events = append(events, event)
	}

	return events, rows.Err()
}

// Compile-time checks.
var (
	_ shortener.Repository = (*Postgres)(nil)
	_ analytics.Store      = (*Postgres)(nil)
	_ analytics.Query      = (*Postgres)(nil)
)
