package shortener

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/serroba/shortlink-go/internal/cache"
	"github.com/serroba/shortlink-go/internal/shortcode"
	"go.uber.org/zap"
)

const (
	maxTargetURLLength = 2048

	// createAttempts bounds the generate-and-insert loop. The alphabet
	// keeps collisions rare at the default length; this loop is what
	// actually guarantees progress when they happen.
	createAttempts = 10
)

// Config tunes the service. Zero values fall back to defaults.
type Config struct {
	// URLTTL is the cache TTL for the fast-path url:<code> projection.
	URLTTL time.Duration
	// StatsTTL is the cache TTL for the stats:<code> projection. Kept
	// short because aggregate stats tolerate more staleness than the
	// redirect target.
	StatsTTL time.Duration
	// CodeLength is the length of generated codes.
	CodeLength int
	// TaskTimeout bounds detached background operations.
	TaskTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.URLTTL <= 0 {
		c.URLTTL = time.Hour
	}

	if c.StatsTTL <= 0 {
		c.StatsTTL = 5 * time.Minute
	}

	if c.CodeLength <= 0 {
		c.CodeLength = shortcode.DefaultLength
	}

	if c.TaskTimeout <= 0 {
		c.TaskTimeout = 10 * time.Second
	}

	return c
}

// urlProjection is the derived cache entry for the redirect fast path.
// Cache TTL and logical expiry are independent clocks; ExpiresAt travels
// with the entry so resolution can self-heal when the cache outlives it.
type urlProjection struct {
	TargetURL string     `json:"originalUrl"`
	ExpiresAt *time.Time `json:"expirationDate,omitempty"`
}

// Service orchestrates creation, resolution, click accounting, and
// deletion across the repository and the cache.
type Service struct {
	repo      Repository
	cache     cache.Cache
	generator *shortcode.Generator
	logger    *zap.Logger
	cfg       Config

	bg sync.WaitGroup
}

// NewService creates the resolution service.
func NewService(
	repo Repository,
	c cache.Cache,
	generator *shortcode.Generator,
	logger *zap.Logger,
	cfg Config,
) *Service {
	return &Service{
		repo:      repo,
		cache:     c,
		generator: generator,
		logger:    logger,
		cfg:       cfg.withDefaults(),
	}
}

// CreateRequest holds the inputs for creating a mapping.
type CreateRequest struct {
	TargetURL  string
	CustomCode string
	ExpiresAt  *time.Time
}

// CreateMapping validates the request and inserts a new mapping, then
// write-through populates the url:<code> projection. A custom code that
// collides fails with ErrCodeTaken; generated codes retry up to the
// attempt budget before ErrGenerationExhausted.
func (s *Service) CreateMapping(ctx context.Context, req CreateRequest) (*Mapping, error) {
	if err := validateTargetURL(req.TargetURL); err != nil {
		return nil, err
	}

	if err := validateExpiry(req.ExpiresAt); err != nil {
		return nil, err
	}

	mapping, err := s.insert(ctx, req)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, cache.URLKey(mapping.Code), urlProjection{
		TargetURL: mapping.TargetURL,
		ExpiresAt: mapping.ExpiresAt,
	}, s.cfg.URLTTL)

	s.logger.Info("short url created",
		zap.String("code", mapping.Code),
		zap.String("targetUrl", mapping.TargetURL),
	)

	return mapping, nil
}

func (s *Service) insert(ctx context.Context, req CreateRequest) (*Mapping, error) {
	if req.CustomCode != "" {
		if !shortcode.IsValid(req.CustomCode) {
			return nil, &ValidationError{
				Message: "custom code must be 3-20 characters from the short code alphabet",
			}
		}

		// Terminal on collision: the caller picked this code.
		return s.repo.Create(ctx, req.CustomCode, req.TargetURL, req.ExpiresAt)
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		code, err := s.generator.Generate(s.cfg.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("generate short code: %w", err)
		}

		mapping, err := s.repo.Create(ctx, code, req.TargetURL, req.ExpiresAt)
		if err == nil {
			return mapping, nil
		}

		if !errors.Is(err, ErrCodeTaken) {
			return nil, err
		}
	}

	return nil, ErrGenerationExhausted
}

// Resolve returns the target address for a code, reading through the
// cache. Negative results are never cached: a miss during concurrent
// creation must not shadow the record that is about to land.
func (s *Service) Resolve(ctx context.Context, code string) (string, error) {
	key := cache.URLKey(code)

	var cached urlProjection
	if s.cache.Get(ctx, key, &cached) {
		if cached.ExpiresAt != nil && !cached.ExpiresAt.After(time.Now()) {
			// The cache TTL outlived the logical expiry; drop the entry.
			s.cache.Delete(ctx, key)

			return "", ErrNotFound
		}

		return cached.TargetURL, nil
	}

	mapping, err := s.repo.FindLive(ctx, code)
	if err != nil {
		return "", err
	}

	s.cache.Set(ctx, key, urlProjection{
		TargetURL: mapping.TargetURL,
		ExpiresAt: mapping.ExpiresAt,
	}, s.cfg.URLTTL)

	return mapping.TargetURL, nil
}

// DispatchClick records a click for the code on a detached background
// task. The caller never observes its latency or outcome; the task is not
// bound to the request's lifetime.
func (s *Service) DispatchClick(code string) {
	s.bg.Add(1)

	go func() {
		defer s.bg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.TaskTimeout)
		defer cancel()

		s.RecordClick(ctx, code)
	}()
}

// RecordClick atomically increments the click counter and invalidates the
// stats projection. The fast-path url:<code> entry is deliberately left
// alone; aggregate stats tolerate the divergence, the redirect path pays
// for nothing. Failures, including unknown codes, are logged only.
func (s *Service) RecordClick(ctx context.Context, code string) {
	count, err := s.repo.IncrementClicks(ctx, code)
	if err != nil {
		s.logger.Warn("click accounting failed",
			zap.String("code", code),
			zap.Error(err),
		)

		return
	}

	s.cache.Delete(ctx, cache.StatsKey(code))

	s.logger.Debug("click recorded",
		zap.String("code", code),
		zap.Int64("clickCount", count),
	)
}

// GetStats returns the aggregate stats projection, reading through
// stats:<code> with the short TTL.
func (s *Service) GetStats(ctx context.Context, code string) (*Stats, error) {
	key := cache.StatsKey(code)

	var cached Stats
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	stats, err := s.repo.Stats(ctx, code)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, stats, s.cfg.StatsTTL)

	return stats, nil
}

// DeleteMapping soft-deletes the mapping and invalidates both cache
// projections. Unlike click accounting, deletion must not leave a
// resolvable stale entry behind.
func (s *Service) DeleteMapping(ctx context.Context, code, owner string) (bool, error) {
	deleted, err := s.repo.SoftDelete(ctx, code, owner)
	if err != nil {
		return false, err
	}

	if deleted {
		s.cache.Delete(ctx, cache.URLKey(code))
		s.cache.Delete(ctx, cache.StatsKey(code))
	}

	return deleted, nil
}

// BulkResult reports the outcome of one item in a bulk create.
type BulkResult struct {
	TargetURL string
	Mapping   *Mapping
	Err       error
}

// BulkCreate runs CreateMapping for each request independently. Results
// preserve input order; one failure never aborts the rest.
func (s *Service) BulkCreate(ctx context.Context, reqs []CreateRequest) []BulkResult {
	results := make([]BulkResult, len(reqs))

	for i, req := range reqs {
		mapping, err := s.CreateMapping(ctx, req)
		results[i] = BulkResult{
			TargetURL: req.TargetURL,
			Mapping:   mapping,
			Err:       err,
		}
	}

	return results
}

// Shutdown waits for detached click-accounting tasks to drain.
func (s *Service) Shutdown() error {
	s.bg.Wait()

	return nil
}

func validateTargetURL(raw string) error {
	if raw == "" {
		return &ValidationError{Message: "url is required"}
	}

	if len(raw) > maxTargetURLLength {
		return &ValidationError{Message: "url must not exceed 2048 characters"}
	}

	parsed, err := url.Parse(raw)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return &ValidationError{Message: "url must be an absolute http or https address"}
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &ValidationError{Message: "url scheme must be http or https"}
	}

	return nil
}

func validateExpiry(expiresAt *time.Time) error {
	if expiresAt != nil && !expiresAt.After(time.Now()) {
		return &ValidationError{Message: "expiration date must be in the future"}
	}

	return nil
}
