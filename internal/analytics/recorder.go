package analytics

import (
	"sync"
	"time"

	"github.com/serroba/shortlink-go/internal/geo"
	"github.com/serroba/shortlink-go/internal/messaging"
	"go.uber.org/zap"
)

// Visit is the raw request context handed to the recorder by the redirect
// path. ClientIP only ever lives here, in memory, until it is hashed.
type Visit struct {
	Code      string
	ClientIP  string
	UserAgent string
	Referrer  string
}

// Recorder turns raw visits into enriched VisitEvents and publishes them,
// fire-and-forget. Nothing in this path can delay or fail the redirect
// response: enrichment failures degrade to Unknown fields and publish
// failures are logged and dropped.
type Recorder struct {
	publish messaging.Publish[VisitEvent]
	locator geo.Locator
	logger  *zap.Logger

	bg sync.WaitGroup
}

// NewRecorder creates a visit recorder.
func NewRecorder(
	publish messaging.Publish[VisitEvent],
	locator geo.Locator,
	logger *zap.Logger,
) *Recorder {
	return &Recorder{
		publish: publish,
		locator: locator,
		logger:  logger,
	}
}

// RecordVisit dispatches the visit on a detached background task and
// returns immediately. The task is not bound to the request lifetime.
func (r *Recorder) RecordVisit(visit Visit) {
	occurredAt := time.Now()

	r.bg.Add(1)

	go func() {
		defer r.bg.Done()

		r.record(visit, occurredAt)
	}()
}

func (r *Recorder) record(visit Visit, occurredAt time.Time) {
	location := r.locator.Lookup(visit.ClientIP)
	client := ParseUserAgent(visit.UserAgent)

	event := &VisitEvent{
		Code:         visit.Code,
		ClientIPHash: HashClientIP(visit.ClientIP),
		UserAgent:    visit.UserAgent,
		Referrer:     visit.Referrer,
		Country:      location.Country,
		City:         location.City,
		Browser:      client.Browser,
		OS:           client.OS,
		Device:       client.Device,
		OccurredAt:   occurredAt,
	}

	if err := r.publish(event); err != nil {
		r.logger.Warn("failed to publish visit event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}
}

// Shutdown waits for in-flight visit recordings to drain.
func (r *Recorder) Shutdown() error {
	r.bg.Wait()

	return nil
}
