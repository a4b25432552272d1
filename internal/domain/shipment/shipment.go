// Package shipment holds the PRO shipment aggregate: its number, lifecycle,
// trucking progress, containers and remarks.
package shipment

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
)

// AggregateTypeShipment is the aggregate type name used in events
const AggregateTypeShipment = "Shipment"

// Status is the lifecycle state of a shipment
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsClosed reports whether no further edits are allowed
func (s Status) IsClosed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// TruckingStatus tracks the inland delivery leg of a shipment
type TruckingStatus string

const (
	TruckingPending    TruckingStatus = "PENDING"
	TruckingScheduled  TruckingStatus = "SCHEDULED"
	TruckingDispatched TruckingStatus = "DISPATCHED"
	TruckingInTransit  TruckingStatus = "IN_TRANSIT"
	TruckingDelivered  TruckingStatus = "DELIVERED"
)

var truckingOrder = map[TruckingStatus]int{
	TruckingPending:    0,
	TruckingScheduled:  1,
	TruckingDispatched: 2,
	TruckingInTransit:  3,
	TruckingDelivered:  4,
}

// AllTruckingStatuses returns the statuses in delivery order
func AllTruckingStatuses() []TruckingStatus {
	return []TruckingStatus{TruckingPending, TruckingScheduled, TruckingDispatched, TruckingInTransit, TruckingDelivered}
}

// IsValid checks if the trucking status is known
func (s TruckingStatus) IsValid() bool {
	_, ok := truckingOrder[s]
	return ok
}

// CanTransitionTo allows forward moves only; DELIVERED is terminal
func (s TruckingStatus) CanTransitionTo(next TruckingStatus) bool {
	from, ok := truckingOrder[s]
	if !ok {
		return false
	}
	to, ok := truckingOrder[next]
	if !ok {
		return false
	}
	return to > from
}

var (
	ErrShipmentClosed          = newError("SHIPMENT_CLOSED", "Shipment is completed or cancelled")
	ErrInvalidTruckingStatus   = newError("INVALID_TRUCKING_STATUS", "Unknown trucking status")
	ErrTruckingTransition      = newError("INVALID_TRUCKING_TRANSITION", "Trucking status can only move forward")
	ErrShipmentDetailsTooLong  = newError("INVALID_SHIPMENT_DETAILS", "Shipment detail fields cannot exceed 200 characters")
	ErrShipmentNotesTooLong    = newError("INVALID_SHIPMENT_DETAILS", "Notes cannot exceed 2000 characters")
	ErrTruckingDepartmentOnly  = shared.NewDomainError(shared.CodeForbidden, "Only the trucking department can change trucking status")
	ErrShipmentDepartmentOnly  = shared.NewDomainError(shared.CodeForbidden, "Only the shipment department can manage containers")
	ErrShipmentNotFound        = shared.NewDomainError(shared.CodeNotFound, "Shipment not found")
	ErrShipmentHasDocuments    = newError("SHIPMENT_HAS_DOCUMENTS", "Shipment still has documents")
	ErrShipmentAlreadyComplete = newError("INVALID_STATE", "Shipment is already closed")
)

func newError(code, message string) *shared.DomainError {
	return shared.NewDomainError(code, message)
}

// Details are the free-form descriptive fields of a shipment
type Details struct {
	CustomerName string
	Origin       string
	Destination  string
	Notes        string
}

func (d Details) normalize() (Details, error) {
	d.CustomerName = strings.TrimSpace(d.CustomerName)
	d.Origin = strings.TrimSpace(d.Origin)
	d.Destination = strings.TrimSpace(d.Destination)
	d.Notes = strings.TrimSpace(d.Notes)
	for _, v := range []string{d.CustomerName, d.Origin, d.Destination} {
		if utf8.RuneCountInString(v) > 200 {
			return d, ErrShipmentDetailsTooLong
		}
	}
	if utf8.RuneCountInString(d.Notes) > 2000 {
		return d, ErrShipmentNotesTooLong
	}
	return d, nil
}

// Shipment is the PRO record every document hangs off
type Shipment struct {
	shared.BaseAggregateRoot
	ProNumber      ProNumber
	Details        Details
	Status         Status
	TruckingStatus TruckingStatus
	Containers     []Container
	CreatedBy      uuid.UUID
}

// NewShipment opens a shipment under the given PRO number
func NewShipment(pro ProNumber, details Details, actor shared.Actor) (*Shipment, error) {
	if pro.IsZero() {
		return nil, ErrInvalidProNumber
	}
	details, err := details.normalize()
	if err != nil {
		return nil, err
	}
	s := &Shipment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProNumber:         pro,
		Details:           details,
		Status:            StatusOpen,
		TruckingStatus:    TruckingPending,
		Containers:        make([]Container, 0),
		CreatedBy:         actor.UserID,
	}
	s.AddDomainEvent(NewShipmentCreatedEvent(s, actor))
	return s, nil
}

// UpdateDetails replaces the descriptive fields
func (s *Shipment) UpdateDetails(details Details, actor shared.Actor) error {
	if s.Status.IsClosed() {
		return ErrShipmentClosed
	}
	details, err := details.normalize()
	if err != nil {
		return err
	}
	s.Details = details
	s.touch()
	s.AddDomainEvent(NewShipmentUpdatedEvent(s, actor))
	return nil
}

// UpdateTruckingStatus moves the trucking leg forward
func (s *Shipment) UpdateTruckingStatus(next TruckingStatus, actor shared.Actor) error {
	if !actor.In(shared.DepartmentTrucking) {
		return ErrTruckingDepartmentOnly
	}
	if s.Status.IsClosed() {
		return ErrShipmentClosed
	}
	if !next.IsValid() {
		return ErrInvalidTruckingStatus
	}
	if !s.TruckingStatus.CanTransitionTo(next) {
		return ErrTruckingTransition
	}
	from := s.TruckingStatus
	s.TruckingStatus = next
	s.touch()
	s.AddDomainEvent(NewTruckingStatusChangedEvent(s, from, next, actor))
	return nil
}

// Complete closes the shipment as done
func (s *Shipment) Complete(actor shared.Actor) error {
	return s.close(StatusCompleted, actor)
}

// Cancel closes the shipment as abandoned
func (s *Shipment) Cancel(actor shared.Actor) error {
	return s.close(StatusCancelled, actor)
}

func (s *Shipment) close(to Status, actor shared.Actor) error {
	if s.Status.IsClosed() {
		return ErrShipmentAlreadyComplete
	}
	from := s.Status
	s.Status = to
	s.touch()
	s.AddDomainEvent(NewShipmentStatusChangedEvent(s, from, to, actor))
	return nil
}

// AddContainer attaches a container; numbers are unique per shipment
func (s *Shipment) AddContainer(c Container, actor shared.Actor) error {
	if err := s.checkContainerEdit(actor); err != nil {
		return err
	}
	if s.findContainerByNumber(c.ContainerNumber) >= 0 {
		return ErrDuplicateContainer
	}
	s.Containers = append(s.Containers, c)
	s.touch()
	s.AddDomainEvent(NewContainerEvent(EventTypeContainerAdded, s, c, actor))
	return nil
}

// UpdateContainer replaces the number, seal and size of a container
func (s *Shipment) UpdateContainer(id uuid.UUID, number, seal string, size ContainerSize, actor shared.Actor) (Container, error) {
	if err := s.checkContainerEdit(actor); err != nil {
		return Container{}, err
	}
	idx := s.findContainer(id)
	if idx < 0 {
		return Container{}, ErrContainerNotFound
	}
	updated, err := NewContainer(number, seal, size)
	if err != nil {
		return Container{}, err
	}
	if other := s.findContainerByNumber(updated.ContainerNumber); other >= 0 && other != idx {
		return Container{}, ErrDuplicateContainer
	}
	updated.ID = id
	s.Containers[idx] = updated
	s.touch()
	s.AddDomainEvent(NewContainerEvent(EventTypeContainerUpdated, s, updated, actor))
	return updated, nil
}

// RemoveContainer detaches a container
func (s *Shipment) RemoveContainer(id uuid.UUID, actor shared.Actor) error {
	if err := s.checkContainerEdit(actor); err != nil {
		return err
	}
	idx := s.findContainer(id)
	if idx < 0 {
		return ErrContainerNotFound
	}
	removed := s.Containers[idx]
	s.Containers = append(s.Containers[:idx], s.Containers[idx+1:]...)
	s.touch()
	s.AddDomainEvent(NewContainerEvent(EventTypeContainerRemoved, s, removed, actor))
	return nil
}

func (s *Shipment) checkContainerEdit(actor shared.Actor) error {
	if !actor.In(shared.DepartmentShipment) {
		return ErrShipmentDepartmentOnly
	}
	if s.Status.IsClosed() {
		return ErrShipmentClosed
	}
	return nil
}

func (s *Shipment) findContainer(id uuid.UUID) int {
	for i, c := range s.Containers {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Shipment) findContainerByNumber(number string) int {
	for i, c := range s.Containers {
		if c.ContainerNumber == number {
			return i
		}
	}
	return -1
}

// touch marks the aggregate modified. The repository bumps Version when it
// persists the change.
func (s *Shipment) touch() {
	s.Touch()
}
