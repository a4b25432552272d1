package telemetry

import (
	"context"

	"github.com/logidocs/backend/internal/domain/document"
	"github.com/logidocs/backend/internal/domain/shared"
)

// EventMetrics feeds AppMetrics from the event bus. It subscribes to every
// event type.
type EventMetrics struct {
	metrics *AppMetrics
}

// NewEventMetrics creates the handler
func NewEventMetrics(metrics *AppMetrics) *EventMetrics {
	return &EventMetrics{metrics: metrics}
}

// EventTypes is empty: all events
func (h *EventMetrics) EventTypes() []string {
	return nil
}

// Handle records the event
func (h *EventMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	dept := string(event.EventActor().Department)
	h.metrics.RecordEvent(ctx, event.EventType(), dept)

	e, ok := event.(*document.DocumentEvent)
	if !ok {
		return nil
	}
	switch e.EventType() {
	case document.EventTypeDocumentFileUploaded:
		h.metrics.RecordUpload(ctx, string(e.DocumentType), dept, e.FileSize)
	case document.EventTypeDocumentVerified:
		h.metrics.RecordReview(ctx, string(e.DocumentType), "verified")
	case document.EventTypeDocumentRejected:
		h.metrics.RecordReview(ctx, string(e.DocumentType), "rejected")
	}
	return nil
}

var _ shared.EventHandler = (*EventMetrics)(nil)
