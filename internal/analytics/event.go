// Package analytics records visit events off the redirect path and serves
// aggregate queries over them.
package analytics

import "time"

// TopicVisit is the message topic for recorded visits.
const TopicVisit = "shortlink.visit"

// VisitEvent is one recorded visit to a short code. Append-only; the code
// is not a validated reference, the mapping may be gone by the time the
// event lands.
//
// ClientIPHash is a one-way hash. Raw client addresses are hashed before
// the event is published and never reach the broker or durable storage.
type VisitEvent struct {
	Code         string    `json:"code"`
	ClientIPHash string    `json:"clientIpHash"`
	UserAgent    string    `json:"userAgent"`
	Referrer     string    `json:"referrer,omitempty"`
	Country      string    `json:"country"`
	City         string    `json:"city"`
	Browser      string    `json:"browser"`
	OS           string    `json:"os"`
	Device       string    `json:"device"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// DayCount is the number of visits on one calendar day.
type DayCount struct {
	Date   time.Time `json:"date"`
	Clicks int64     `json:"clicks"`
}

// LocationCount is the number of visits from one country/city pair.
type LocationCount struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Clicks  int64  `json:"clicks"`
}

// BrowserCount is the number of visits from one browser family.
type BrowserCount struct {
	Browser string `json:"browser"`
	Clicks  int64  `json:"clicks"`
}
