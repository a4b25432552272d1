package shipment

import (
	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeShipmentCreated       = "ShipmentCreated"
	EventTypeShipmentUpdated       = "ShipmentUpdated"
	EventTypeShipmentStatusChanged = "ShipmentStatusChanged"
	EventTypeTruckingStatusChanged = "TruckingStatusChanged"
	EventTypeContainerAdded        = "ContainerAdded"
	EventTypeContainerUpdated      = "ContainerUpdated"
	EventTypeContainerRemoved      = "ContainerRemoved"
	EventTypeRemarkAdded           = "RemarkAdded"
	EventTypeRemarkEdited          = "RemarkEdited"
	EventTypeRemarkDeleted         = "RemarkDeleted"
)

// AggregateTypeRemark is the aggregate type name of remark events
const AggregateTypeRemark = "ShipmentRemark"

const remarkExcerptLength = 80

// ShipmentCreatedEvent is raised when a PRO is opened
type ShipmentCreatedEvent struct {
	shared.BaseDomainEvent
	ShipmentID   uuid.UUID `json:"shipment_id"`
	ProNumber    string    `json:"pro_number"`
	CustomerName string    `json:"customer_name"`
}

// NewShipmentCreatedEvent creates a new ShipmentCreatedEvent
func NewShipmentCreatedEvent(s *Shipment, actor shared.Actor) *ShipmentCreatedEvent {
	return &ShipmentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentCreated, AggregateTypeShipment, s.ID, actor),
		ShipmentID:      s.ID,
		ProNumber:       s.ProNumber.String(),
		CustomerName:    s.Details.CustomerName,
	}
}

// ShipmentUpdatedEvent is raised when shipment details change
type ShipmentUpdatedEvent struct {
	shared.BaseDomainEvent
	ShipmentID uuid.UUID `json:"shipment_id"`
	ProNumber  string    `json:"pro_number"`
}

// NewShipmentUpdatedEvent creates a new ShipmentUpdatedEvent
func NewShipmentUpdatedEvent(s *Shipment, actor shared.Actor) *ShipmentUpdatedEvent {
	return &ShipmentUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentUpdated, AggregateTypeShipment, s.ID, actor),
		ShipmentID:      s.ID,
		ProNumber:       s.ProNumber.String(),
	}
}

// ShipmentStatusChangedEvent is raised when a shipment is completed or cancelled
type ShipmentStatusChangedEvent struct {
	shared.BaseDomainEvent
	ShipmentID uuid.UUID `json:"shipment_id"`
	ProNumber  string    `json:"pro_number"`
	From       Status    `json:"from"`
	To         Status    `json:"to"`
}

// NewShipmentStatusChangedEvent creates a new ShipmentStatusChangedEvent
func NewShipmentStatusChangedEvent(s *Shipment, from, to Status, actor shared.Actor) *ShipmentStatusChangedEvent {
	return &ShipmentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentStatusChanged, AggregateTypeShipment, s.ID, actor),
		ShipmentID:      s.ID,
		ProNumber:       s.ProNumber.String(),
		From:            from,
		To:              to,
	}
}

// TruckingStatusChangedEvent is raised when the trucking leg advances
type TruckingStatusChangedEvent struct {
	shared.BaseDomainEvent
	ShipmentID uuid.UUID      `json:"shipment_id"`
	ProNumber  string         `json:"pro_number"`
	From       TruckingStatus `json:"from"`
	To         TruckingStatus `json:"to"`
}

// NewTruckingStatusChangedEvent creates a new TruckingStatusChangedEvent
func NewTruckingStatusChangedEvent(s *Shipment, from, to TruckingStatus, actor shared.Actor) *TruckingStatusChangedEvent {
	return &TruckingStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTruckingStatusChanged, AggregateTypeShipment, s.ID, actor),
		ShipmentID:      s.ID,
		ProNumber:       s.ProNumber.String(),
		From:            from,
		To:              to,
	}
}

// ContainerEvent is raised when a container is added, updated or removed.
// The concrete change is carried by the event type.
type ContainerEvent struct {
	shared.BaseDomainEvent
	ShipmentID      uuid.UUID     `json:"shipment_id"`
	ProNumber       string        `json:"pro_number"`
	ContainerID     uuid.UUID     `json:"container_id"`
	ContainerNumber string        `json:"container_number"`
	SealNumber      string        `json:"seal_number"`
	Size            ContainerSize `json:"size,omitempty"`
}

// NewContainerEvent creates a container event of the given type
func NewContainerEvent(eventType string, s *Shipment, c Container, actor shared.Actor) *ContainerEvent {
	return &ContainerEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeShipment, s.ID, actor),
		ShipmentID:      s.ID,
		ProNumber:       s.ProNumber.String(),
		ContainerID:     c.ID,
		ContainerNumber: c.ContainerNumber,
		SealNumber:      c.SealNumber,
		Size:            c.Size,
	}
}

// RemarkEvent is raised when a remark is added, edited or deleted
type RemarkEvent struct {
	shared.BaseDomainEvent
	ShipmentID uuid.UUID `json:"shipment_id"`
	ProNumber  string    `json:"pro_number"`
	RemarkID   uuid.UUID `json:"remark_id"`
	Excerpt    string    `json:"excerpt"`
}

// NewRemarkEvent creates a remark event of the given type
func NewRemarkEvent(eventType string, r *Remark, actor shared.Actor) *RemarkEvent {
	excerpt := []rune(r.Body)
	if len(excerpt) > remarkExcerptLength {
		excerpt = append(excerpt[:remarkExcerptLength], '…')
	}
	return &RemarkEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeRemark, r.ID, actor),
		ShipmentID:      r.ShipmentID,
		ProNumber:       r.ProNumber.String(),
		RemarkID:        r.ID,
		Excerpt:         string(excerpt),
	}
}
