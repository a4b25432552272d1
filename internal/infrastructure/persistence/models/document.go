package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/document"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/domain/shipment"
	"github.com/shopspring/decimal"
)

// DocumentModel is the persistence model for the Document aggregate.
// (shipment_id, type) is unique.
type DocumentModel struct {
	AggregateModel
	ShipmentID      uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_documents_shipment_type,priority:1"`
	ProNumber       string            `gorm:"type:char(7);not null;index"`
	Type            document.Type     `gorm:"type:varchar(30);not null;uniqueIndex:idx_documents_shipment_type,priority:2"`
	Department      shared.Department `gorm:"type:varchar(20);not null;index"`
	Status          document.Status   `gorm:"type:varchar(20);not null;default:'PENDING_REVIEW';index"`
	FileName        string            `gorm:"type:varchar(255)"`
	StorageKey      string            `gorm:"type:varchar(1024)"`
	ContentType     string            `gorm:"type:varchar(150)"`
	FileSize        int64             `gorm:"not null;default:0"`
	UploadedBy      uuid.UUID         `gorm:"type:uuid;not null"`
	UploadedByName  string            `gorm:"type:varchar(100)"`
	VerifiedBy      *uuid.UUID        `gorm:"type:uuid"`
	VerifiedByName  string            `gorm:"type:varchar(100)"`
	VerifiedAt      *time.Time
	RejectionReason string               `gorm:"type:varchar(500)"`
	Fields          []DocumentFieldModel `gorm:"foreignKey:DocumentID"`
	Items           []DocumentItemModel  `gorm:"foreignKey:DocumentID"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// DocumentFieldModel stores one form field value
type DocumentFieldModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index"`
	Key        string    `gorm:"column:field_key;type:varchar(50);not null"`
	Value      string    `gorm:"column:field_value;type:text;not null"`
	Position   int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DocumentFieldModel) TableName() string {
	return "document_fields"
}

// DocumentItemModel stores one product line
type DocumentItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	DocumentID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo      int             `gorm:"not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:varchar(500)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit        string          `gorm:"type:varchar(20)"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Packages    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	NetWeight   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	GrossWeight decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Measurement decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (DocumentItemModel) TableName() string {
	return "document_items"
}

// ToDomain converts the persistence model to a domain Document
func (m *DocumentModel) ToDomain() *document.Document {
	pro, _ := shipment.ParseProNumber(m.ProNumber)
	d := &document.Document{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ShipmentID:        m.ShipmentID,
		ProNumber:         pro,
		Type:              m.Type,
		Department:        m.Department,
		Status:            m.Status,
		Fields:            make([]document.Field, len(m.Fields)),
		Items:             make([]document.Item, len(m.Items)),
		UploadedBy:        m.UploadedBy,
		UploadedByName:    m.UploadedByName,
		VerifiedBy:        m.VerifiedBy,
		VerifiedByName:    m.VerifiedByName,
		VerifiedAt:        m.VerifiedAt,
		RejectionReason:   m.RejectionReason,
	}
	if m.StorageKey != "" {
		d.File = &document.File{
			Name:        m.FileName,
			StorageKey:  m.StorageKey,
			ContentType: m.ContentType,
			Size:        m.FileSize,
		}
	}
	for i, f := range m.Fields {
		d.Fields[i] = document.Field{Key: f.Key, Value: f.Value, Position: f.Position}
	}
	for i, it := range m.Items {
		d.Items[i] = document.Item{
			ID:          it.ID,
			LineNo:      it.LineNo,
			ProductName: it.ProductName,
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Amount,
			Packages:    it.Packages,
			NetWeight:   it.NetWeight,
			GrossWeight: it.GrossWeight,
			Measurement: it.Measurement,
		}
	}
	return d
}

// DocumentModelFromDomain creates a persistence model from a domain Document
func DocumentModelFromDomain(d *document.Document) *DocumentModel {
	m := &DocumentModel{
		ShipmentID:      d.ShipmentID,
		ProNumber:       d.ProNumber.String(),
		Type:            d.Type,
		Department:      d.Department,
		Status:          d.Status,
		UploadedBy:      d.UploadedBy,
		UploadedByName:  d.UploadedByName,
		VerifiedBy:      d.VerifiedBy,
		VerifiedByName:  d.VerifiedByName,
		VerifiedAt:      d.VerifiedAt,
		RejectionReason: d.RejectionReason,
	}
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	if d.File != nil {
		m.FileName = d.File.Name
		m.StorageKey = d.File.StorageKey
		m.ContentType = d.File.ContentType
		m.FileSize = d.File.Size
	}
	m.Fields = DocumentFieldModelsFromDomain(d.ID, d.Fields)
	m.Items = DocumentItemModelsFromDomain(d.ID, d.Items)
	return m
}

// DocumentFieldModelsFromDomain maps fields to rows with fresh IDs
func DocumentFieldModelsFromDomain(documentID uuid.UUID, fields []document.Field) []DocumentFieldModel {
	out := make([]DocumentFieldModel, len(fields))
	for i, f := range fields {
		out[i] = DocumentFieldModel{
			ID:         uuid.New(),
			DocumentID: documentID,
			Key:        f.Key,
			Value:      f.Value,
			Position:   f.Position,
		}
	}
	return out
}

// DocumentItemModelsFromDomain maps items to rows
func DocumentItemModelsFromDomain(documentID uuid.UUID, items []document.Item) []DocumentItemModel {
	out := make([]DocumentItemModel, len(items))
	for i, it := range items {
		id := it.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		out[i] = DocumentItemModel{
			ID:          id,
			DocumentID:  documentID,
			LineNo:      it.LineNo,
			ProductName: it.ProductName,
			Description: it.Description,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Amount,
			Packages:    it.Packages,
			NetWeight:   it.NetWeight,
			GrossWeight: it.GrossWeight,
			Measurement: it.Measurement,
		}
	}
	return out
}
