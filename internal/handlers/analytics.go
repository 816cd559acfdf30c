package handlers

import (
	"context"

	"github.com/serroba/shortlink-go/internal/analytics"
	"github.com/serroba/shortlink-go/internal/shortener"
)

// AnalyticsHandler serves aggregate and detailed visit analytics.
type AnalyticsHandler struct {
	shortener *shortener.Service
	analytics *analytics.Service
}

// NewAnalyticsHandler creates an analytics handler.
func NewAnalyticsHandler(s *shortener.Service, a *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{shortener: s, analytics: a}
}

// GetSummary returns the aggregate analytics view for a live code.
func (h *AnalyticsHandler) GetSummary(ctx context.Context, req *SummaryRequest) (*SummaryResponse, error) {
	// Existence check first so an unknown code is a clean 404 rather
	// than an empty summary.
	stats, err := h.shortener.GetStats(ctx, req.Code)
	if err != nil {
		return nil, mapServiceError(err)
	}

	summary, err := h.analytics.Summary(ctx, req.Code)
	if err != nil {
		return nil, mapServiceError(err)
	}

	resp := &SummaryResponse{}
	resp.Body.Code = req.Code
	resp.Body.TotalClicks = stats.ClickCount
	resp.Body.Analytics = summary

	return resp, nil
}

// GetDetailed returns one page of raw visit events for a live code.
func (h *AnalyticsHandler) GetDetailed(ctx context.Context, req *DetailedRequest) (*DetailedResponse, error) {
	if _, err := h.shortener.GetStats(ctx, req.Code); err != nil {
		return nil, mapServiceError(err)
	}

	page, err := h.analytics.Detailed(ctx, req.Code, req.Page, req.Limit)
	if err != nil {
		return nil, mapServiceError(err)
	}

	return &DetailedResponse{Body: page}, nil
}
