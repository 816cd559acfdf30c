package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink-go/internal/ratelimit"
)

// RegisterRoutes registers all API routes with per-endpoint rate limit
// configuration.
func RegisterRoutes(api huma.API, urls *URLHandler, stats *AnalyticsHandler) {
	createLimits := ratelimit.EndpointConfig{
		Action: "create",
		Limits: []ratelimit.LimitConfig{
			{Window: 15 * time.Minute, Max: 20},
		},
	}

	huma.Register(api, huma.Operation{
		Method:        http.MethodPost,
		Path:          "/urls",
		Summary:       "Create short URL",
		Description:   "Creates a shortened URL, optionally with a custom code and expiration.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
		Metadata:      map[string]any{ratelimit.MetadataKey: createLimits},
	}, urls.CreateShortURL)

	huma.Register(api, huma.Operation{
		Method:        http.MethodPost,
		Path:          "/urls/bulk",
		Summary:       "Create short URLs in bulk",
		Description:   "Creates up to 100 shortened URLs. Items succeed or fail independently.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
		Metadata:      map[string]any{ratelimit.MetadataKey: createLimits},
	}, urls.BulkCreate)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/urls/{code}",
		Summary: "Get short URL info",
		Tags:    []string{"URLs"},
	}, urls.GetURLInfo)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/urls/{code}/stats",
		Summary: "Get short URL stats",
		Tags:    []string{"URLs"},
	}, urls.GetURLStats)

	huma.Register(api, huma.Operation{
		Method:  http.MethodDelete,
		Path:    "/urls/{code}",
		Summary: "Delete short URL",
		Tags:    []string{"URLs"},
	}, urls.DeleteURL)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/analytics/{code}/summary",
		Summary: "Get analytics summary",
		Tags:    []string{"Analytics"},
	}, stats.GetSummary)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/analytics/{code}/detailed",
		Summary: "Get detailed analytics",
		Tags:    []string{"Analytics"},
	}, stats.GetDetailed)

	// Redirect route last; relaxed limits, this is the hot path.
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL associated with the short code.",
		Tags:        []string{"URLs"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Action: "redirect",
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 1000},
				},
			},
		},
	}, urls.RedirectToURL)
}
