// Package shipment contains the PRO use cases: opening and editing
// shipments, trucking progress, containers and remarks.
package shipment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/domain/shipment"
	"github.com/logidocs/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrShipmentEditForbidden is returned when a department other than
// SHIPMENT tries to open, edit or close a PRO
var ErrShipmentEditForbidden = shared.NewDomainError(shared.CodeForbidden, "Only the shipment department can open or edit shipments")

// ShipmentService handles shipment business operations
type ShipmentService struct {
	shipmentRepo   shipment.ShipmentRepository
	remarkRepo     shipment.RemarkRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewShipmentService creates a new ShipmentService
func NewShipmentService(
	shipmentRepo shipment.ShipmentRepository,
	remarkRepo shipment.RemarkRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *ShipmentService {
	return &ShipmentService{
		shipmentRepo:   shipmentRepo,
		remarkRepo:     remarkRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
		now:            time.Now,
	}
}

// Create opens a shipment under the next PRO number of the requested year
func (s *ShipmentService) Create(ctx context.Context, actor shared.Actor, req CreateShipmentRequest) (*ShipmentResponse, error) {
	if !actor.In(shared.DepartmentShipment) {
		return nil, ErrShipmentEditForbidden
	}
	year := req.Year
	if year == 0 {
		year = s.now().Year()
	}

	// Validate containers before a PRO number is consumed
	containers := make([]shipment.Container, 0, len(req.Containers))
	for _, in := range req.Containers {
		c, err := shipment.NewContainer(in.ContainerNumber, in.SealNumber, shipment.ContainerSize(in.Size))
		if err != nil {
			return nil, err
		}
		containers = append(containers, c)
	}

	details := shipment.Details{
		CustomerName: req.CustomerName,
		Origin:       req.Origin,
		Destination:  req.Destination,
		Notes:        req.Notes,
	}
	created, err := s.shipmentRepo.Create(ctx, year, func(pro shipment.ProNumber) (*shipment.Shipment, error) {
		sh, err := shipment.NewShipment(pro, details, actor)
		if err != nil {
			return nil, err
		}
		for _, c := range containers {
			if err := sh.AddContainer(c, actor); err != nil {
				return nil, err
			}
		}
		return sh, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("Shipment created",
		zap.String("pro_number", created.ProNumber.String()),
		zap.String("shipment_id", created.ID.String()))

	s.publish(ctx, created)
	response := ToShipmentResponse(created)
	return &response, nil
}

// GetByProNumber retrieves a shipment by its PRO number
func (s *ShipmentService) GetByProNumber(ctx context.Context, pro string) (*ShipmentResponse, error) {
	sh, err := s.Load(ctx, pro)
	if err != nil {
		return nil, err
	}
	response := ToShipmentResponse(sh)
	return &response, nil
}

// Load parses pro and fetches the shipment aggregate
func (s *ShipmentService) Load(ctx context.Context, pro string) (*shipment.Shipment, error) {
	number, err := shipment.ParseProNumber(pro)
	if err != nil {
		return nil, err
	}
	return s.shipmentRepo.FindByProNumber(ctx, number)
}

// List lists shipments with filtering and pagination
func (s *ShipmentService) List(ctx context.Context, input ListShipmentsInput) (shared.Paginated[ShipmentResponse], error) {
	filter := shipment.Filter{
		Filter: shared.Filter{
			Page:     input.Page,
			PageSize: input.PageSize,
			OrderBy:  input.OrderBy,
			OrderDir: input.OrderDir,
			Search:   input.Search,
		},
		Year: input.Year,
	}
	if input.Status != "" {
		status := shipment.Status(input.Status)
		if !status.IsValid() {
			return shared.Paginated[ShipmentResponse]{}, shared.NewDomainError(shared.CodeInvalidInput, "Unknown shipment status")
		}
		filter.Status = &status
	}
	if input.TruckingStatus != "" {
		ts := shipment.TruckingStatus(input.TruckingStatus)
		if !ts.IsValid() {
			return shared.Paginated[ShipmentResponse]{}, shipment.ErrInvalidTruckingStatus
		}
		filter.TruckingStatus = &ts
	}
	normalizePage(&filter.Filter)

	shipments, total, err := s.shipmentRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ShipmentResponse]{}, err
	}
	items := make([]ShipmentResponse, len(shipments))
	for i, sh := range shipments {
		items[i] = ToShipmentResponse(sh)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// Update replaces the descriptive fields of a shipment
func (s *ShipmentService) Update(ctx context.Context, actor shared.Actor, pro string, req UpdateShipmentRequest) (*ShipmentResponse, error) {
	if !actor.In(shared.DepartmentShipment) {
		return nil, ErrShipmentEditForbidden
	}
	return s.mutate(ctx, pro, req.Version, func(sh *shipment.Shipment) error {
		return sh.UpdateDetails(shipment.Details{
			CustomerName: req.CustomerName,
			Origin:       req.Origin,
			Destination:  req.Destination,
			Notes:        req.Notes,
		}, actor)
	})
}

// UpdateTruckingStatus moves the trucking status forward
func (s *ShipmentService) UpdateTruckingStatus(ctx context.Context, actor shared.Actor, pro string, req UpdateTruckingStatusRequest) (*ShipmentResponse, error) {
	return s.mutate(ctx, pro, nil, func(sh *shipment.Shipment) error {
		return sh.UpdateTruckingStatus(shipment.TruckingStatus(req.Status), actor)
	})
}

// Complete closes the shipment as done
func (s *ShipmentService) Complete(ctx context.Context, actor shared.Actor, pro string) (*ShipmentResponse, error) {
	if !actor.In(shared.DepartmentShipment) {
		return nil, ErrShipmentEditForbidden
	}
	return s.mutate(ctx, pro, nil, func(sh *shipment.Shipment) error {
		return sh.Complete(actor)
	})
}

// Cancel closes the shipment as abandoned
func (s *ShipmentService) Cancel(ctx context.Context, actor shared.Actor, pro string) (*ShipmentResponse, error) {
	if !actor.In(shared.DepartmentShipment) {
		return nil, ErrShipmentEditForbidden
	}
	return s.mutate(ctx, pro, nil, func(sh *shipment.Shipment) error {
		return sh.Cancel(actor)
	})
}

// AddContainer attaches a container to the shipment
func (s *ShipmentService) AddContainer(ctx context.Context, actor shared.Actor, pro string, in ContainerInput) (*ShipmentResponse, error) {
	c, err := shipment.NewContainer(in.ContainerNumber, in.SealNumber, shipment.ContainerSize(in.Size))
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, pro, nil, func(sh *shipment.Shipment) error {
		return sh.AddContainer(c, actor)
	})
}

// UpdateContainer changes a container's number, seal or size
func (s *ShipmentService) UpdateContainer(ctx context.Context, actor shared.Actor, pro string, containerID uuid.UUID, in ContainerInput) (*ShipmentResponse, error) {
	return s.mutate(ctx, pro, nil, func(sh *shipment.Shipment) error {
		_, err := sh.UpdateContainer(containerID, in.ContainerNumber, in.SealNumber, shipment.ContainerSize(in.Size), actor)
		return err
	})
}

// RemoveContainer detaches a container
func (s *ShipmentService) RemoveContainer(ctx context.Context, actor shared.Actor, pro string, containerID uuid.UUID) (*ShipmentResponse, error) {
	return s.mutate(ctx, pro, nil, func(sh *shipment.Shipment) error {
		return sh.RemoveContainer(containerID, actor)
	})
}

// mutate loads the shipment, applies change and saves with optimistic locking
func (s *ShipmentService) mutate(ctx context.Context, pro string, expectedVersion *int, change func(*shipment.Shipment) error) (*ShipmentResponse, error) {
	sh, err := s.Load(ctx, pro)
	if err != nil {
		return nil, err
	}
	if expectedVersion != nil && *expectedVersion != sh.Version {
		return nil, shared.ErrConcurrencyConflict
	}
	if err := change(sh); err != nil {
		return nil, err
	}
	if err := s.shipmentRepo.Update(ctx, sh); err != nil {
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			logger.Enrich(ctx, s.logger).Error("Failed to save shipment",
				zap.String("pro_number", pro),
				zap.Error(err))
		}
		return nil, err
	}

	s.publish(ctx, sh)
	response := ToShipmentResponse(sh)
	return &response, nil
}

func (s *ShipmentService) publish(ctx context.Context, agg shared.AggregateRoot) {
	events := agg.GetDomainEvents()
	agg.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// The change is committed; a failing subscriber must not fail the request
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.Enrich(ctx, s.logger).Error("Failed to publish shipment events", zap.Error(err))
	}
}

func normalizePage(f *shared.Filter) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
}
