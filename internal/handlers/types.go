package handlers

import (
	"time"

	"github.com/serroba/shortlink-go/internal/analytics"
	"github.com/serroba/shortlink-go/internal/shortener"
)

// CreateURLItem is one URL to shorten.
type CreateURLItem struct {
	URL        string     `doc:"The URL to shorten"                example:"https://example.com/very/long/path" json:"url"`
	CustomCode string     `doc:"Optional custom short code (3-20)" example:"go123"                               json:"customCode,omitempty"`
	Expiration *time.Time `doc:"Optional expiration time"          json:"expiration,omitempty"`
}

// CreateURLRequest is the request for creating a short URL.
type CreateURLRequest struct {
	Body CreateURLItem
}

// ShortURLBody describes a created short URL.
type ShortURLBody struct {
	Code        string     `doc:"The short code"     example:"abc123"                       json:"code"`
	ShortURL    string     `doc:"The full short URL" example:"http://localhost:8888/abc123" json:"shortUrl"`
	OriginalURL string     `doc:"The original URL"   json:"originalUrl"`
	CreatedAt   time.Time  `doc:"Creation time"      json:"createdAt"`
	Expiration  *time.Time `doc:"Expiration time"    json:"expirationDate,omitempty"`
}

// CreateURLResponse is the response for a successfully created short URL.
type CreateURLResponse struct {
	Headers struct {
		Location string `doc:"The short URL location" header:"Location"`
	}
	Body ShortURLBody
}

// BulkCreateRequest is the request for creating short URLs in bulk.
type BulkCreateRequest struct {
	Body struct {
		URLs []CreateURLItem `doc:"URLs to shorten" json:"urls" maxItems:"100" minItems:"1"`
	}
}

// BulkItemResult reports the outcome of one bulk item, in input order.
type BulkItemResult struct {
	Success     bool          `json:"success"`
	Data        *ShortURLBody `json:"data,omitempty"`
	Error       string        `json:"error,omitempty"`
	OriginalURL string        `json:"originalUrl,omitempty"`
}

// BulkCreateResponse is the response for a bulk create.
type BulkCreateResponse struct {
	Body struct {
		Total      int              `json:"total"`
		Successful int              `json:"successful"`
		Failed     int              `json:"failed"`
		Results    []BulkItemResult `json:"results"`
	}
}

// CodeRequest targets an existing short code.
type CodeRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"code"`
}

// URLInfoResponse describes an existing short URL.
type URLInfoResponse struct {
	Body ShortURLBody
}

// StatsResponse is the aggregate stats projection for a code.
type StatsResponse struct {
	Body struct {
		shortener.Stats
		ShortURL string `json:"shortUrl"`
	}
}

// DeleteResponse reports a successful delete.
type DeleteResponse struct {
	Body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
}

// RedirectResponse sends the browser to the target address.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The original URL" header:"Location"`
	}
}

// SummaryRequest asks for the analytics summary of a code.
type SummaryRequest struct {
	Code string `doc:"The short code" path:"code"`
}

// SummaryResponse is the aggregate analytics view for a code.
type SummaryResponse struct {
	Body struct {
		Code        string             `json:"code"`
		TotalClicks int64              `json:"totalClicks"`
		Analytics   *analytics.Summary `json:"analytics"`
	}
}

// DetailedRequest asks for one page of raw visit events.
type DetailedRequest struct {
	Code  string `doc:"The short code"         path:"code"`
	Page  int    `doc:"Page number, from 1"    minimum:"1" query:"page"`
	Limit int    `doc:"Page size"              maximum:"100" minimum:"1" query:"limit"`
}

// DetailedResponse is one page of raw visit events.
type DetailedResponse struct {
	Body *analytics.DetailedPage
}
