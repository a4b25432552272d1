package document

import (
	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeDocumentCreated      = "DocumentCreated"
	EventTypeDocumentFileUploaded = "DocumentFileUploaded"
	EventTypeDocumentEdited       = "DocumentEdited"
	EventTypeDocumentVerified     = "DocumentVerified"
	EventTypeDocumentRejected     = "DocumentRejected"
	EventTypeDocumentDeleted      = "DocumentDeleted"
)

// DocumentEvent is raised for every change to a document. The event type
// says what happened; Detail carries the file name, edit summary or
// rejection reason.
type DocumentEvent struct {
	shared.BaseDomainEvent
	DocumentID   uuid.UUID `json:"document_id"`
	ShipmentID   uuid.UUID `json:"shipment_id"`
	ProNumber    string    `json:"pro_number"`
	DocumentType Type      `json:"document_type"`
	Status       Status    `json:"status"`
	Detail       string    `json:"detail,omitempty"`
	FileSize     int64     `json:"file_size,omitempty"`
}

// NewDocumentEvent creates a document event of the given type
func NewDocumentEvent(eventType string, d *Document, actor shared.Actor, detail string) *DocumentEvent {
	var size int64
	if d.File != nil {
		size = d.File.Size
	}
	return &DocumentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeDocument, d.ID, actor),
		DocumentID:      d.ID,
		ShipmentID:      d.ShipmentID,
		ProNumber:       d.ProNumber.String(),
		DocumentType:    d.Type,
		Status:          d.Status,
		Detail:          detail,
		FileSize:        size,
	}
}
