package generalinfo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/document"
	"github.com/logidocs/backend/internal/domain/shipment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubShipments serves FindByProNumber; other methods are not used
type stubShipments struct {
	shipment.ShipmentRepository
	mock.Mock
}

func (m *stubShipments) FindByProNumber(ctx context.Context, pro shipment.ProNumber) (*shipment.Shipment, error) {
	args := m.Called(ctx, pro)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

// stubDocuments serves FindByShipment; other methods are not used
type stubDocuments struct {
	document.Repository
	mock.Mock
}

func (m *stubDocuments) FindByShipment(ctx context.Context, shipmentID uuid.UUID) ([]*document.Document, error) {
	args := m.Called(ctx, shipmentID)
	return args.Get(0).([]*document.Document), args.Error(1)
}

type fakeExporter struct {
	got *Summary
	err error
}

func (f *fakeExporter) GeneralInfoPDF(ctx context.Context, summary *Summary) ([]byte, error) {
	f.got = summary
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7"), nil
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	sh := testShipment(t)
	inv := testDocument(t, sh, document.TypeInvoice, nil, []document.Item{invoiceItem("Bolts", "2", "1", "2", "pcs")})
	shipments := new(stubShipments)
	docs := new(stubDocuments)
	shipments.On("FindByProNumber", ctx, sh.ProNumber).Return(sh, nil)
	docs.On("FindByShipment", ctx, sh.ID).Return([]*document.Document{inv}, nil)

	svc := NewService(shipments, docs, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	s, err := svc.Get(ctx, "2026012")

	require.NoError(t, err)
	assert.Equal(t, "2026012", s.ProNumber)
	assert.Equal(t, "Acme", s.Shipment.CustomerName)
	assert.Len(t, s.Lines, 1)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), s.GeneratedAt)
}

func TestService_GetInvalidPro(t *testing.T) {
	svc := NewService(new(stubShipments), new(stubDocuments), nil, zap.NewNop())

	_, err := svc.Get(context.Background(), "26-1")

	assert.ErrorIs(t, err, shipment.ErrInvalidProNumber)
}

func TestService_PDFDisabled(t *testing.T) {
	svc := NewService(new(stubShipments), new(stubDocuments), nil, zap.NewNop())

	_, _, err := svc.PDF(context.Background(), "2026012")

	assert.ErrorIs(t, err, ErrPrintingDisabled)
}

func TestService_PDF(t *testing.T) {
	ctx := context.Background()
	sh := testShipment(t)
	shipments := new(stubShipments)
	docs := new(stubDocuments)
	shipments.On("FindByProNumber", ctx, sh.ProNumber).Return(sh, nil)
	docs.On("FindByShipment", ctx, sh.ID).Return([]*document.Document{}, nil)

	exporter := &fakeExporter{}
	data, name, err := NewService(shipments, docs, exporter, zap.NewNop()).PDF(ctx, "2026012")

	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))
	assert.Equal(t, "general-info-2026012.pdf", name)
	assert.Equal(t, "2026012", exporter.got.ProNumber)

	exporter.err = errors.New("chrome crashed")
	_, _, err = NewService(shipments, docs, exporter, zap.NewNop()).PDF(ctx, "2026012")
	assert.ErrorIs(t, err, ErrPrintFailed)
}
