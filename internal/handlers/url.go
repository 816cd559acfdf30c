// Package handlers exposes the shortener and analytics services over huma
// operations.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink-go/internal/analytics"
	"github.com/serroba/shortlink-go/internal/shortener"
	"go.uber.org/zap"
)

// URLHandler handles short URL management and the redirect path.
type URLHandler struct {
	service  *shortener.Service
	recorder *analytics.Recorder
	baseURL  string
	logger   *zap.Logger
}

// NewURLHandler creates a URL handler.
func NewURLHandler(
	service *shortener.Service,
	recorder *analytics.Recorder,
	baseURL string,
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		service:  service,
		recorder: recorder,
		baseURL:  baseURL,
		logger:   logger,
	}
}

func (h *URLHandler) shortURLBody(mapping *shortener.Mapping) ShortURLBody {
	return ShortURLBody{
		Code:        mapping.Code,
		ShortURL:    fmt.Sprintf("%s/%s", h.baseURL, mapping.Code),
		OriginalURL: mapping.TargetURL,
		CreatedAt:   mapping.CreatedAt,
		Expiration:  mapping.ExpiresAt,
	}
}

// CreateShortURL creates one short URL.
func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateURLRequest) (*CreateURLResponse, error) {
	mapping, err := h.service.CreateMapping(ctx, shortener.CreateRequest{
		TargetURL:  req.Body.URL,
		CustomCode: req.Body.CustomCode,
		ExpiresAt:  req.Body.Expiration,
	})
	if err != nil {
		return nil, mapServiceError(err)
	}

	resp := &CreateURLResponse{Body: h.shortURLBody(mapping)}
	resp.Headers.Location = resp.Body.ShortURL

	return resp, nil
}

// BulkCreate creates up to 100 short URLs; items fail independently.
func (h *URLHandler) BulkCreate(ctx context.Context, req *BulkCreateRequest) (*BulkCreateResponse, error) {
	creates := make([]shortener.CreateRequest, len(req.Body.URLs))
	for i, item := range req.Body.URLs {
		creates[i] = shortener.CreateRequest{
			TargetURL:  item.URL,
			CustomCode: item.CustomCode,
			ExpiresAt:  item.Expiration,
		}
	}

	results := h.service.BulkCreate(ctx, creates)

	resp := &BulkCreateResponse{}
	resp.Body.Total = len(results)
	resp.Body.Results = make([]BulkItemResult, len(results))

	for i, result := range results {
		if result.Err != nil {
			resp.Body.Failed++
			resp.Body.Results[i] = BulkItemResult{
				Error:       result.Err.Error(),
				OriginalURL: result.TargetURL,
			}

			continue
		}

		resp.Body.Successful++

		body := h.shortURLBody(result.Mapping)
		resp.Body.Results[i] = BulkItemResult{Success: true, Data: &body}
	}

	h.logger.Info("bulk url creation completed",
		zap.Int("successful", resp.Body.Successful),
		zap.Int("failed", resp.Body.Failed),
	)

	return resp, nil
}

// GetURLInfo returns the public description of a live short URL.
func (h *URLHandler) GetURLInfo(ctx context.Context, req *CodeRequest) (*URLInfoResponse, error) {
	stats, err := h.service.GetStats(ctx, req.Code)
	if err != nil {
		return nil, mapServiceError(err)
	}

	resp := &URLInfoResponse{}
	resp.Body = ShortURLBody{
		Code:        stats.Code,
		ShortURL:    fmt.Sprintf("%s/%s", h.baseURL, stats.Code),
		OriginalURL: stats.TargetURL,
		CreatedAt:   stats.CreatedAt,
		Expiration:  stats.ExpiresAt,
	}

	return resp, nil
}

// GetURLStats returns the aggregate stats projection for a code.
func (h *URLHandler) GetURLStats(ctx context.Context, req *CodeRequest) (*StatsResponse, error) {
	stats, err := h.service.GetStats(ctx, req.Code)
	if err != nil {
		return nil, mapServiceError(err)
	}

	resp := &StatsResponse{}
	resp.Body.Stats = *stats
	resp.Body.ShortURL = fmt.Sprintf("%s/%s", h.baseURL, stats.Code)

	return resp, nil
}

// DeleteURL soft-deletes a short URL.
func (h *URLHandler) DeleteURL(ctx context.Context, req *CodeRequest) (*DeleteResponse, error) {
	deleted, err := h.service.DeleteMapping(ctx, req.Code, "")
	if err != nil {
		return nil, mapServiceError(err)
	}

	if !deleted {
		return nil, huma.Error404NotFound("the requested short url does not exist")
	}

	resp := &DeleteResponse{}
	resp.Body.Success = true
	resp.Body.Message = "url deleted successfully"

	return resp, nil
}

// RedirectToURL resolves the code and sends a permanent redirect. Click
// accounting and visit recording are dispatched after the target is
// known and never delay the response.
func (h *URLHandler) RedirectToURL(ctx context.Context, req *CodeRequest) (*RedirectResponse, error) {
	target, err := h.service.Resolve(ctx, req.Code)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("the requested short url does not exist or has expired")
		}

		h.logger.Error("resolve failed", zap.String("code", req.Code), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to resolve url")
	}

	meta := RequestMetaFromContext(ctx)

	h.service.DispatchClick(req.Code)
	h.recorder.RecordVisit(analytics.Visit{
		Code:      req.Code,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
		Referrer:  meta.Referrer,
	})

	resp := &RedirectResponse{Status: http.StatusMovedPermanently}
	resp.Headers.Location = target

	return resp, nil
}

// mapServiceError converts domain errors to HTTP errors. Unexpected
// failures become a generic 500 with the detail kept out of the response.
func mapServiceError(err error) error {
	var validationErr *shortener.ValidationError

	switch {
	case errors.As(err, &validationErr):
		return huma.Error400BadRequest(validationErr.Message)
	case errors.Is(err, shortener.ErrCodeTaken):
		return huma.Error409Conflict("custom short code already exists")
	case errors.Is(err, shortener.ErrGenerationExhausted):
		return huma.Error409Conflict("unable to generate unique short code")
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound("the requested short url does not exist or has expired")
	default:
		return huma.Error500InternalServerError("internal server error")
	}
}
