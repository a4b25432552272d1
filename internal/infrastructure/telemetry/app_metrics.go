package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/logidocs/backend"

// AppMetrics are the document, domain event and realtime instruments
type AppMetrics struct {
	uploads      metric.Int64Counter
	uploadBytes  metric.Float64Histogram
	reviews      metric.Int64Counter
	events       metric.Int64Counter
	sseClients   metric.Int64ObservableGauge
	sseDropped   metric.Int64ObservableCounter
	registration metric.Registration
}

// RealtimeStats reports live subscriber figures
type RealtimeStats interface {
	ClientCount() int
	DroppedCount() int64
}

// NewAppMetrics creates the instruments on mp. stats may be nil.
func NewAppMetrics(mp *MeterProvider, stats RealtimeStats) (*AppMetrics, error) {
	meter := mp.Meter(meterName)
	m := &AppMetrics{}
	var errs []error
	var err error

	m.uploads, err = meter.Int64Counter("logidocs.document.uploads",
		metric.WithDescription("Files uploaded to documents"),
		metric.WithUnit("{file}"))
	errs = append(errs, err)
	m.uploadBytes, err = meter.Float64Histogram("logidocs.document.upload.size",
		metric.WithDescription("Uploaded file size"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(FileSizeBuckets...))
	errs = append(errs, err)
	m.reviews, err = meter.Int64Counter("logidocs.document.reviews",
		metric.WithDescription("Document verifications and rejections"),
		metric.WithUnit("{review}"))
	errs = append(errs, err)
	m.events, err = meter.Int64Counter("logidocs.domain.events",
		metric.WithDescription("Domain events published"),
		metric.WithUnit("{event}"))
	errs = append(errs, err)
	m.sseClients, err = meter.Int64ObservableGauge("logidocs.realtime.clients",
		metric.WithDescription("Connected Actions Log stream clients"),
		metric.WithUnit("{client}"))
	errs = append(errs, err)
	m.sseDropped, err = meter.Int64ObservableCounter("logidocs.realtime.dropped",
		metric.WithDescription("Entries dropped for slow stream clients"),
		metric.WithUnit("{entry}"))
	errs = append(errs, err)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if stats != nil {
		m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			o.ObserveInt64(m.sseClients, int64(stats.ClientCount()))
			o.ObserveInt64(m.sseDropped, stats.DroppedCount())
			return nil
		}, m.sseClients, m.sseDropped)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordUpload counts an uploaded file
func (m *AppMetrics) RecordUpload(ctx context.Context, docType, department string, size int64) {
	attrs := metric.WithAttributes(
		attribute.String("document.type", docType),
		attribute.String("department", department),
	)
	m.uploads.Add(ctx, 1, attrs)
	m.uploadBytes.Record(ctx, float64(size), attrs)
}

// RecordReview counts a verification or rejection
func (m *AppMetrics) RecordReview(ctx context.Context, docType, outcome string) {
	m.reviews.Add(ctx, 1, metric.WithAttributes(
		attribute.String("document.type", docType),
		attribute.String("outcome", outcome),
	))
}

// RecordEvent counts a published domain event
func (m *AppMetrics) RecordEvent(ctx context.Context, eventType, department string) {
	m.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event.type", eventType),
		attribute.String("department", department),
	))
}

// Close unregisters the realtime callback
func (m *AppMetrics) Close() error {
	if m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}
