package document

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/document"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/infrastructure/importer"
	"github.com/shopspring/decimal"
)

// FieldInput is one submitted form value
type FieldInput struct {
	Key      string `json:"key" binding:"required,max=50"`
	Value    string `json:"value" binding:"max=1000"`
	Position int    `json:"position" binding:"min=0,max=200"`
}

// ContentInput is the form body shared by create, update and validate
type ContentInput struct {
	Fields []FieldInput         `json:"fields" binding:"omitempty,max=500,dive"`
	Items  []document.ItemInput `json:"items" binding:"omitempty,max=1000"`
}

// CreateDocumentRequest creates a document from a filled-in form
type CreateDocumentRequest struct {
	Type string `json:"type" binding:"required"`
	ContentInput
}

// UpdateDocumentRequest replaces the fields and items of a document. When
// Version is set it must match the stored version.
type UpdateDocumentRequest struct {
	ContentInput
	Version *int `json:"version"`
}

// ValidateRequest is a dry-run validation of a form
type ValidateRequest struct {
	Type string `json:"type" binding:"required"`
	ContentInput
}

// RejectRequest sends a document back with a reason
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// FileInput is an uploaded binary
type FileInput struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadInput uploads a file for a shipment, optionally with form content
type UploadInput struct {
	ProNumber string
	Type      string
	File      FileInput
	Content   *ContentInput
}

// ListDocumentsInput contains filters for listing documents
type ListDocumentsInput struct {
	Page       int
	PageSize   int
	OrderBy    string
	OrderDir   string
	ProNumber  string
	Type       string
	Department string
	Status     string
}

// FileResponse describes the stored binary
type FileResponse struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// ItemResponse is a line item in API responses
type ItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	LineNo      int             `json:"line_no"`
	ProductName string          `json:"product_name"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	Packages    decimal.Decimal `json:"packages"`
	NetWeight   decimal.Decimal `json:"net_weight"`
	GrossWeight decimal.Decimal `json:"gross_weight"`
	Measurement decimal.Decimal `json:"measurement"`
}

// DocumentResponse is a document in API responses
type DocumentResponse struct {
	ID              uuid.UUID        `json:"id"`
	ShipmentID      uuid.UUID        `json:"shipment_id"`
	ProNumber       string           `json:"pro_number"`
	Type            string           `json:"type"`
	TypeLabel       string           `json:"type_label"`
	Department      string           `json:"department"`
	Status          string           `json:"status"`
	File            *FileResponse    `json:"file,omitempty"`
	Fields          []document.Field `json:"fields"`
	Items           []ItemResponse   `json:"items"`
	UploadedBy      uuid.UUID        `json:"uploaded_by"`
	UploadedByName  string           `json:"uploaded_by_name"`
	VerifiedBy      *uuid.UUID       `json:"verified_by,omitempty"`
	VerifiedByName  string           `json:"verified_by_name,omitempty"`
	VerifiedAt      *time.Time       `json:"verified_at,omitempty"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	Version         int              `json:"version"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// PreviewResponse is a short-lived signed link to the stored file
type PreviewResponse struct {
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expires_at"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
}

// ValidationResponse is the outcome of a dry-run validation
type ValidationResponse struct {
	Valid  bool                `json:"valid"`
	Fields []document.Field    `json:"fields"`
	Items  []ItemResponse      `json:"items"`
	Errors []shared.FieldError `json:"errors"`
}

// ImportResponse is the outcome of a line item import. On row errors the
// document is left unchanged and Document is nil.
type ImportResponse struct {
	Document   *DocumentResponse   `json:"document,omitempty"`
	Imported   int                 `json:"imported"`
	TotalRows  int                 `json:"total_rows"`
	Errors     []importer.RowError `json:"errors"`
	ErrorCount int                 `json:"error_count"`
}

// TypeSchemaResponse describes the form of one document type
type TypeSchemaResponse struct {
	Type        string               `json:"type"`
	Label       string               `json:"label"`
	Department  string               `json:"department"`
	AllowsItems bool                 `json:"allows_items"`
	Fields      []document.FieldSpec `json:"fields"`
}

func (c *ContentInput) fields() []document.Field {
	out := make([]document.Field, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = document.Field{Key: f.Key, Value: f.Value, Position: f.Position}
	}
	return out
}

// ToItemResponses converts domain items
func ToItemResponses(items []document.Item) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, it := range items {
		out[i] = ItemResponse{
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
	return out
}

// ToDocumentResponse converts a domain document
func ToDocumentResponse(d *document.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:              d.ID,
		ShipmentID:      d.ShipmentID,
		ProNumber:       d.ProNumber.String(),
		Type:            string(d.Type),
		TypeLabel:       d.Type.Label(),
		Department:      string(d.Department),
		Status:          string(d.Status),
		Fields:          d.Fields,
		Items:           ToItemResponses(d.Items),
		UploadedBy:      d.UploadedBy,
		UploadedByName:  d.UploadedByName,
		VerifiedBy:      d.VerifiedBy,
		VerifiedByName:  d.VerifiedByName,
		VerifiedAt:      d.VerifiedAt,
		RejectionReason: d.RejectionReason,
		Version:         d.Version,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if resp.Fields == nil {
		resp.Fields = []document.Field{}
	}
	if d.HasFile() {
		resp.File = &FileResponse{
			Name:        d.File.Name,
			ContentType: d.File.ContentType,
			Size:        d.File.Size,
		}
	}
	return resp
}

// ToTypeSchemaResponse describes a document type
func ToTypeSchemaResponse(t document.Type) TypeSchemaResponse {
	return TypeSchemaResponse{
		Type:        string(t),
		Label:       t.Label(),
		Department:  string(t.OwningDepartment()),
		AllowsItems: t.AllowsItems(),
		Fields:      t.Schema(),
	}
}
