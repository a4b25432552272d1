package document

import (
	"context"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
)

// Filter narrows document listings
type Filter struct {
	shared.Filter
	ShipmentID *uuid.UUID
	Type       *Type
	Department *shared.Department
	Status     *Status
}

// Repository persists documents together with their fields and items
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)
	FindByShipment(ctx context.Context, shipmentID uuid.UUID) ([]*Document, error)
	FindByShipmentAndType(ctx context.Context, shipmentID uuid.UUID, t Type) (*Document, error)
	FindAll(ctx context.Context, filter Filter) ([]*Document, int64, error)
	// Create inserts the document; a second document of the same type for the
	// shipment yields ErrDocumentExists
	Create(ctx context.Context, d *Document) error
	// Update saves the document and replaces its fields and items, using
	// the version for optimistic locking
	Update(ctx context.Context, d *Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByShipment(ctx context.Context, shipmentID uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
	CountByType(ctx context.Context) (map[Type]int64, error)
}
