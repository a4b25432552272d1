// Package generalinfo derives the read-only General Info summary of a PRO
// from its Bill of Lading, Invoice and Packing List.
package generalinfo

import (
	"context"
	"time"

	"github.com/logidocs/backend/internal/domain/document"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/domain/shipment"
	"github.com/logidocs/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrPrintingDisabled is returned when no PDF exporter is configured
var ErrPrintingDisabled = shared.NewDomainError("PRINTING_DISABLED", "PDF export is not enabled on this server")

// ErrPrintFailed is returned when the PDF could not be produced
var ErrPrintFailed = shared.NewDomainError("PRINT_FAILED", "The PDF could not be generated")

// PDFExporter renders a summary as a PDF document
type PDFExporter interface {
	GeneralInfoPDF(ctx context.Context, summary *Summary) ([]byte, error)
}

// Service builds General Info summaries
type Service struct {
	shipmentRepo shipment.ShipmentRepository
	documentRepo document.Repository
	exporter     PDFExporter
	logger       *zap.Logger
	now          func() time.Time
}

// NewService creates a General Info service. exporter may be nil when
// printing is disabled.
func NewService(
	shipmentRepo shipment.ShipmentRepository,
	documentRepo document.Repository,
	exporter PDFExporter,
	logger *zap.Logger,
) *Service {
	return &Service{
		shipmentRepo: shipmentRepo,
		documentRepo: documentRepo,
		exporter:     exporter,
		logger:       logger,
		now:          time.Now,
	}
}

// Get returns the General Info of a PRO
func (s *Service) Get(ctx context.Context, pro string) (*Summary, error) {
	number, err := shipment.ParseProNumber(pro)
	if err != nil {
		return nil, err
	}
	sh, err := s.shipmentRepo.FindByProNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	docs, err := s.documentRepo.FindByShipment(ctx, sh.ID)
	if err != nil {
		return nil, err
	}
	return Merge(sh, docs, s.now().UTC()), nil
}

// PDF returns the General Info of a PRO as a PDF with a suggested file name
func (s *Service) PDF(ctx context.Context, pro string) ([]byte, string, error) {
	if s.exporter == nil {
		return nil, "", ErrPrintingDisabled
	}
	summary, err := s.Get(ctx, pro)
	if err != nil {
		return nil, "", err
	}
	data, err := s.exporter.GeneralInfoPDF(ctx, summary)
	if err != nil {
		logger.Enrich(ctx, s.logger).Error("Failed to render General Info PDF",
			zap.String("pro_number", summary.ProNumber),
			zap.Error(err))
		return nil, "", ErrPrintFailed
	}
	return data, "general-info-" + summary.ProNumber + ".pdf", nil
}
