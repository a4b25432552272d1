package models

import (
	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/domain/shipment"
)

// ShipmentModel is the persistence model for the Shipment aggregate
type ShipmentModel struct {
	AggregateModel
	ProNumber      string                  `gorm:"type:char(7);not null;uniqueIndex"`
	Year           int                     `gorm:"not null;index:idx_shipments_year_seq,priority:1"`
	Sequence       int                     `gorm:"not null;index:idx_shipments_year_seq,priority:2"`
	CustomerName   string                  `gorm:"type:varchar(200)"`
	Origin         string                  `gorm:"type:varchar(200)"`
	Destination    string                  `gorm:"type:varchar(200)"`
	Notes          string                  `gorm:"type:text"`
	Status         shipment.Status         `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	TruckingStatus shipment.TruckingStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CreatedBy      uuid.UUID               `gorm:"type:uuid"`
	Containers     []ContainerModel        `gorm:"foreignKey:ShipmentID"`
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ContainerModel is the persistence model for a shipment container
type ContainerModel struct {
	ID              uuid.UUID              `gorm:"type:uuid;primary_key"`
	ShipmentID      uuid.UUID              `gorm:"type:uuid;not null;index"`
	Position        int                    `gorm:"not null;default:0"`
	ContainerNumber string                 `gorm:"type:varchar(11);not null"`
	SealNumber      string                 `gorm:"type:varchar(50)"`
	Size            shipment.ContainerSize `gorm:"type:varchar(10)"`
}

// TableName returns the table name for GORM
func (ContainerModel) TableName() string {
	return "shipment_containers"
}

// ToDomain converts the persistence model to a domain Shipment
func (m *ShipmentModel) ToDomain() *shipment.Shipment {
	containers := make([]shipment.Container, len(m.Containers))
	for i, c := range m.Containers {
		containers[i] = shipment.Container{
			ID:              c.ID,
			ContainerNumber: c.ContainerNumber,
			SealNumber:      c.SealNumber,
			Size:            c.Size,
		}
	}
	return &shipment.Shipment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ProNumber:         shipment.ProNumber{Year: m.Year, Sequence: m.Sequence},
		Details: shipment.Details{
			CustomerName: m.CustomerName,
			Origin:       m.Origin,
			Destination:  m.Destination,
			Notes:        m.Notes,
		},
		Status:         m.Status,
		TruckingStatus: m.TruckingStatus,
		Containers:     containers,
		CreatedBy:      m.CreatedBy,
	}
}

// ShipmentModelFromDomain creates a persistence model from a domain Shipment
func ShipmentModelFromDomain(s *shipment.Shipment) *ShipmentModel {
	m := &ShipmentModel{
		ProNumber:      s.ProNumber.String(),
		Year:           s.ProNumber.Year,
		Sequence:       s.ProNumber.Sequence,
		CustomerName:   s.Details.CustomerName,
		Origin:         s.Details.Origin,
		Destination:    s.Details.Destination,
		Notes:          s.Details.Notes,
		Status:         s.Status,
		TruckingStatus: s.TruckingStatus,
		CreatedBy:      s.CreatedBy,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Containers = ContainerModelsFromDomain(s.ID, s.Containers)
	return m
}

// ContainerModelsFromDomain maps containers keeping their order in Position
func ContainerModelsFromDomain(shipmentID uuid.UUID, containers []shipment.Container) []ContainerModel {
	out := make([]ContainerModel, len(containers))
	for i, c := range containers {
		out[i] = ContainerModel{
			ID:              c.ID,
			ShipmentID:      shipmentID,
			Position:        i,
			ContainerNumber: c.ContainerNumber,
			SealNumber:      c.SealNumber,
			Size:            c.Size,
		}
	}
	return out
}

// RemarkModel is the persistence model for a shipment remark
type RemarkModel struct {
	BaseModel
	ShipmentID uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProNumber  string            `gorm:"type:char(7);not null"`
	Department shared.Department `gorm:"type:varchar(20);not null"`
	AuthorID   uuid.UUID         `gorm:"type:uuid;not null"`
	AuthorName string            `gorm:"type:varchar(100)"`
	Body       string            `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (RemarkModel) TableName() string {
	return "shipment_remarks"
}

// ToDomain converts the persistence model to a domain Remark.
// A malformed stored PRO number maps to the zero value.
func (m *RemarkModel) ToDomain() *shipment.Remark {
	pro, _ := shipment.ParseProNumber(m.ProNumber)
	return &shipment.Remark{
		BaseEntity: m.BaseModel.ToDomain(),
		ShipmentID: m.ShipmentID,
		ProNumber:  pro,
		Department: m.Department,
		AuthorID:   m.AuthorID,
		AuthorName: m.AuthorName,
		Body:       m.Body,
	}
}

// RemarkModelFromDomain creates a persistence model from a domain Remark
func RemarkModelFromDomain(r *shipment.Remark) *RemarkModel {
	m := &RemarkModel{
		ShipmentID: r.ShipmentID,
		ProNumber:  r.ProNumber.String(),
		Department: r.Department,
		AuthorID:   r.AuthorID,
		AuthorName: r.AuthorName,
		Body:       r.Body,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}
