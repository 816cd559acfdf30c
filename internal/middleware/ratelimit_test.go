package middleware_test

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/shortlink-go/internal/cache"
	"github.com/serroba/shortlink-go/internal/middleware"
	"github.com/serroba/shortlink-go/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const (
	testHostAddr  = "192.168.1.1:12345"
	testUserAgent = "TestAgent/1.0"
)

var errMultipartNotSupported = errors.New("multipart not supported in mock")

func newTestAPI() huma.API {
	return humachi.New(chi.NewMux(), huma.DefaultConfig("Test", "1.0.0"))
}

func testDefaults(readMax, writeMax int64) middleware.DefaultLimits {
	return middleware.DefaultLimits{
		Read:  []ratelimit.LimitConfig{{Window: time.Minute, Max: readMax}},
		Write: []ratelimit.LimitConfig{{Window: time.Minute, Max: writeMax}},
	}
}

// fakeHumaContext implements huma.Context for exercising the middleware
// without a full server.
type fakeHumaContext struct {
	headers    map[string]string
	host       string
	method     string
	operation  *huma.Operation
	statusCode int
	written    []byte
}

func newFakeHumaContext() *fakeHumaContext {
	return &fakeHumaContext{
		headers: make(map[string]string),
		method:  http.MethodGet,
		host:    testHostAddr,
	}
}

func (f *fakeHumaContext) Operation() *huma.Operation { return f.operation }

func (f *fakeHumaContext) Context() context.Context { return context.Background() }

func (f *fakeHumaContext) TLS() *tls.ConnectionState { return nil }

func (f *fakeHumaContext) Version() huma.ProtoVersion { return huma.ProtoVersion{} }

func (f *fakeHumaContext) Method() string { return f.method }

func (f *fakeHumaContext) Host() string { return f.host }

func (f *fakeHumaContext) RemoteAddr() string { return f.host }

func (f *fakeHumaContext) URL() url.URL { return url.URL{} }

func (f *fakeHumaContext) Param(_ string) string { return "" }

func (f *fakeHumaContext) Query(_ string) string { return "" }

func (f *fakeHumaContext) Header(name string) string { return f.headers[name] }

func (f *fakeHumaContext) EachHeader(_ func(name, value string)) {}

func (f *fakeHumaContext) BodyReader() io.Reader { return nil }

func (f *fakeHumaContext) GetMultipartForm() (*multipart.Form, error) {
	return nil, errMultipartNotSupported
}

func (f *fakeHumaContext) SetReadDeadline(_ time.Time) error { return nil }

func (f *fakeHumaContext) SetStatus(code int) { f.statusCode = code }

func (f *fakeHumaContext) Status() int { return f.statusCode }

func (f *fakeHumaContext) AppendHeader(_, _ string) {}

func (f *fakeHumaContext) SetHeader(_, _ string) {}

func (f *fakeHumaContext) BodyWriter() io.Writer { return &fakeBodyWriter{ctx: f} }

type fakeBodyWriter struct {
	ctx *fakeHumaContext
}

func (w *fakeBodyWriter) Write(p []byte) (int, error) {
	w.ctx.written = append(w.ctx.written, p...)

	return len(p), nil
}

// run sends one request through the middleware and reports whether it
// reached the handler.
func run(mw func(huma.Context, func(huma.Context)), ctx *fakeHumaContext) bool {
	nextCalled := false

	mw(ctx, func(_ huma.Context) {
		nextCalled = true
	})

	return nextCalled
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests under the limit", func(t *testing.T) {
		mw := middleware.RateLimiter(newTestAPI(), ratelimit.NewLimiter(cache.NewMemory()), testDefaults(3, 3), zap.NewNop())

		for i := 0; i < 3; i++ {
			ctx := newFakeHumaContext()
			ctx.headers["User-Agent"] = testUserAgent

			assert.True(t, run(mw, ctx), "request %d should pass", i+1)
		}
	})

	t.Run("returns 429 over the limit", func(t *testing.T) {
		mw := middleware.RateLimiter(newTestAPI(), ratelimit.NewLimiter(cache.NewMemory()), testDefaults(1, 1), zap.NewNop())

		first := newFakeHumaContext()
		first.headers["User-Agent"] = testUserAgent
		assert.True(t, run(mw, first))

		second := newFakeHumaContext()
		second.headers["User-Agent"] = testUserAgent

		assert.False(t, run(mw, second))
		assert.Equal(t, http.StatusTooManyRequests, second.statusCode)
		assert.Contains(t, string(second.written), "rate limit exceeded")
	})

	t.Run("separates read and write buckets", func(t *testing.T) {
		mw := middleware.RateLimiter(newTestAPI(), ratelimit.NewLimiter(cache.NewMemory()), testDefaults(5, 1), zap.NewNop())

		write := newFakeHumaContext()
		write.method = http.MethodPost
		write.headers["User-Agent"] = testUserAgent
		assert.True(t, run(mw, write))

		// Write bucket is exhausted; reads still pass.
		write2 := newFakeHumaContext()
		write2.method = http.MethodPost
		write2.headers["User-Agent"] = testUserAgent
		assert.False(t, run(mw, write2))

		read := newFakeHumaContext()
		read.headers["User-Agent"] = testUserAgent
		assert.True(t, run(mw, read))
	})

	t.Run("separates clients by user agent", func(t *testing.T) {
		mw := middleware.RateLimiter(newTestAPI(), ratelimit.NewLimiter(cache.NewMemory()), testDefaults(1, 1), zap.NewNop())

		first := newFakeHumaContext()
		first.headers["User-Agent"] = testUserAgent
		assert.True(t, run(mw, first))

		other := newFakeHumaContext()
		other.headers["User-Agent"] = "DifferentAgent/2.0"

		assert.True(t, run(mw, other), "a different client should have its own bucket")
	})

	t.Run("uses first hop of X-Forwarded-For", func(t *testing.T) {
		mw := middleware.RateLimiter(newTestAPI(), ratelimit.NewLimiter(cache.NewMemory()), testDefaults(1, 1), zap.NewNop())

		first := newFakeHumaContext()
		first.host = "10.0.0.1:12345"
		first.headers["X-Forwarded-For"] = "203.0.113.195, 70.41.3.18"
		first.headers["User-Agent"] = testUserAgent
		assert.True(t, run(mw, first))

		// Same client IP through a different proxy shares the bucket.
		second := newFakeHumaContext()
		second.host = "10.0.0.2:54321"
		second.headers["X-Forwarded-For"] = "203.0.113.195"
		second.headers["User-Agent"] = testUserAgent

		assert.False(t, run(mw, second))
	})

	t.Run("endpoint metadata overrides defaults", func(t *testing.T) {
		mw := middleware.RateLimiter(newTestAPI(), ratelimit.NewLimiter(cache.NewMemory()), testDefaults(100, 100), zap.NewNop())

		op := &huma.Operation{
			Path: "/urls",
			Metadata: map[string]any{
				ratelimit.MetadataKey: ratelimit.EndpointConfig{
					Action: "create",
					Limits: []ratelimit.LimitConfig{{Window: time.Minute, Max: 1}},
				},
			},
		}

		first := newFakeHumaContext()
		first.operation = op
		first.headers["User-Agent"] = testUserAgent
		assert.True(t, run(mw, first))

		second := newFakeHumaContext()
		second.operation = op
		second.headers["User-Agent"] = testUserAgent

		assert.False(t, run(mw, second))
		assert.Equal(t, http.StatusTooManyRequests, second.statusCode)
	})

	t.Run("disabled metadata opts the endpoint out", func(t *testing.T) {
		mw := middleware.RateLimiter(newTestAPI(), ratelimit.NewLimiter(cache.NewMemory()), testDefaults(1, 1), zap.NewNop())

		op := &huma.Operation{
			Path: "/health",
			Metadata: map[string]any{
				ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
			},
		}

		for i := 0; i < 5; i++ {
			ctx := newFakeHumaContext()
			ctx.operation = op
			ctx.headers["User-Agent"] = testUserAgent

			assert.True(t, run(mw, ctx), "opted-out endpoint should never limit")
		}
	})

	t.Run("fails open when the cache is down", func(t *testing.T) {
		mw := middleware.RateLimiter(newTestAPI(), ratelimit.NewLimiter(unavailableCache{}), testDefaults(1, 1), zap.NewNop())

		for i := 0; i < 5; i++ {
			ctx := newFakeHumaContext()
			ctx.headers["User-Agent"] = testUserAgent

			assert.True(t, run(mw, ctx), "limiter must not reject during a cache outage")
		}
	})
}

// unavailableCache degrades every operation.
type unavailableCache struct{}

func (unavailableCache) Get(_ context.Context, _ string, _ any) bool { return false }

func (unavailableCache) Set(_ context.Context, _ string, _ any, _ time.Duration) bool { return false }

func (unavailableCache) Delete(_ context.Context, _ string) bool { return false }

func (unavailableCache) Increment(_ context.Context, _ string, _ time.Duration) int64 { return 0 }
