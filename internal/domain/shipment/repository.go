package shipment

import (
	"context"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
)

// Filter narrows shipment listings
type Filter struct {
	shared.Filter
	Status         *Status
	TruckingStatus *TruckingStatus
	Year           int
}

// ShipmentRepository persists shipments with their containers
type ShipmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)
	FindByProNumber(ctx context.Context, pro ProNumber) (*Shipment, error)
	FindAll(ctx context.Context, filter Filter) ([]*Shipment, int64, error)
	// Create allocates the next PRO number for year, assigns it to the
	// shipment built by build, and inserts it atomically.
	Create(ctx context.Context, year int, build func(ProNumber) (*Shipment, error)) (*Shipment, error)
	// Update saves changes using the shipment's version for optimistic locking
	Update(ctx context.Context, s *Shipment) error
	CountByTruckingStatus(ctx context.Context) (map[TruckingStatus]int64, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

// RemarkRepository persists shipment remarks
type RemarkRepository interface {
	Create(ctx context.Context, r *Remark) error
	Update(ctx context.Context, r *Remark) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Remark, error)
	ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]*Remark, error)
}
