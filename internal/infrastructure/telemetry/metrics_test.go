package telemetry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/document"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

type fakeStats struct {
	clients int
	dropped int64
}

func (f fakeStats) ClientCount() int    { return f.clients }
func (f fakeStats) DroppedCount() int64 { return f.dropped }

func newTestMetrics(t *testing.T, stats RealtimeStats) (*AppMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := &MeterProvider{
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
		logger:   zap.NewNop(),
	}
	m, err := NewAppMetrics(mp, stats)
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestAppMetrics_RealtimeGauge(t *testing.T) {
	m, reader := newTestMetrics(t, fakeStats{clients: 3, dropped: 7})
	defer m.Close()

	data := collect(t, reader)

	gauge, ok := data["logidocs.realtime.clients"].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(3), gauge.DataPoints[0].Value)

	dropped, ok := data["logidocs.realtime.dropped"].(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(7), dropped.DataPoints[0].Value)
}

func TestEventMetrics_Handle(t *testing.T) {
	m, reader := newTestMetrics(t, nil)
	h := NewEventMetrics(m)
	ctx := context.Background()
	actor := shared.Actor{UserID: uuid.New(), Department: shared.DepartmentFinance}

	uploaded := &document.DocumentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(document.EventTypeDocumentFileUploaded, document.AggregateTypeDocument, uuid.New(), actor),
		DocumentType:    document.TypeInvoice,
		FileSize:        2048,
	}
	verified := &document.DocumentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(document.EventTypeDocumentVerified, document.AggregateTypeDocument, uuid.New(), actor),
		DocumentType:    document.TypeInvoice,
	}
	require.NoError(t, h.Handle(ctx, uploaded))
	require.NoError(t, h.Handle(ctx, verified))

	data := collect(t, reader)

	events := data["logidocs.domain.events"].(metricdata.Sum[int64])
	var total int64
	for _, dp := range events.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	uploads := data["logidocs.document.uploads"].(metricdata.Sum[int64])
	require.Len(t, uploads.DataPoints, 1)
	assert.Equal(t, int64(1), uploads.DataPoints[0].Value)

	size := data["logidocs.document.upload.size"].(metricdata.Histogram[float64])
	assert.Equal(t, 2048.0, size.DataPoints[0].Sum)

	reviews := data["logidocs.document.reviews"].(metricdata.Sum[int64])
	require.Len(t, reviews.DataPoints, 1)
	outcome, _ := reviews.DataPoints[0].Attributes.Value("outcome")
	assert.Equal(t, "verified", outcome.AsString())
	assert.Nil(t, h.EventTypes())
}
