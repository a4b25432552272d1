// Package document models the trade documents attached to a PRO: their
// type-specific field schemas, line items, review status and stored file.
package document

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/domain/shipment"
)

// AggregateTypeDocument is the aggregate type name used in events
const AggregateTypeDocument = "Document"

// Status is the review state of a document
type Status string

const (
	StatusPendingReview Status = "PENDING_REVIEW"
	StatusVerified      Status = "VERIFIED"
	StatusRejected      Status = "REJECTED"
)

// AllStatuses returns every review status
func AllStatuses() []Status {
	return []Status{StatusPendingReview, StatusVerified, StatusRejected}
}

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingReview, StatusVerified, StatusRejected:
		return true
	}
	return false
}

var (
	ErrDocumentNotFound    = shared.NewDomainError(shared.CodeNotFound, "Document not found")
	ErrDocumentExists      = shared.NewDomainError("DOCUMENT_EXISTS", "This shipment already has a document of that type")
	ErrNotOwningDepartment = shared.NewDomainError(shared.CodeForbidden, "Your department cannot manage this document type")
	ErrVerifierOnly        = shared.NewDomainError(shared.CodeForbidden, "Only the verifier department can review documents")
	ErrAlreadyReviewed     = shared.NewDomainError(shared.CodeInvalidState, "Document has already been reviewed")
	ErrRejectionReason     = shared.NewDomainError("INVALID_REJECTION_REASON", "A rejection reason of at most 500 characters is required")
	ErrItemsNotAllowed     = shared.NewDomainError(CodeItemsNotAllowed, "This document type has no line items")
)

// File describes the stored binary of a document
type File struct {
	Name        string
	StorageKey  string
	ContentType string
	Size        int64
}

// Document is a trade document of one type belonging to one shipment
type Document struct {
	shared.BaseAggregateRoot
	ShipmentID      uuid.UUID
	ProNumber       shipment.ProNumber
	Type            Type
	Department      shared.Department
	Status          Status
	File            *File
	Fields          []Field
	Items           []Item
	UploadedBy      uuid.UUID
	UploadedByName  string
	VerifiedBy      *uuid.UUID
	VerifiedByName  string
	VerifiedAt      *time.Time
	RejectionReason string
}

// NewDocument creates a document for a shipment from validated content
func NewDocument(s *shipment.Shipment, t Type, content Content, actor shared.Actor) (*Document, error) {
	if !t.IsValid() {
		return nil, ErrInvalidType
	}
	if !actor.In(t.OwningDepartment()) {
		return nil, ErrNotOwningDepartment
	}
	if s.Status.IsClosed() {
		return nil, shipment.ErrShipmentClosed
	}
	if len(content.Items) > 0 && !t.AllowsItems() {
		return nil, ErrItemsNotAllowed
	}
	d := &Document{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ShipmentID:        s.ID,
		ProNumber:         s.ProNumber,
		Type:              t,
		Department:        t.OwningDepartment(),
		Status:            StatusPendingReview,
		Fields:            content.Fields,
		Items:             content.Items,
		UploadedBy:        actor.UserID,
		UploadedByName:    actor.Username,
	}
	d.AddDomainEvent(NewDocumentEvent(EventTypeDocumentCreated, d, actor, ""))
	return d, nil
}

// Content returns the fields and items as validated content
func (d *Document) Content() Content {
	return Content{Fields: d.Fields, Items: d.Items}
}

// HasFile reports whether a binary has been uploaded
func (d *Document) HasFile() bool {
	return d.File != nil && d.File.StorageKey != ""
}

// CanManage reports whether actor may edit, replace or delete the document
func (d *Document) CanManage(actor shared.Actor) bool {
	return actor.In(d.Type.OwningDepartment())
}

// AttachFile stores a new binary reference and returns the previous one
func (d *Document) AttachFile(f File, actor shared.Actor) (*File, error) {
	if !d.CanManage(actor) {
		return nil, ErrNotOwningDepartment
	}
	previous := d.File
	d.File = &f
	d.reopen()
	d.Touch()
	d.AddDomainEvent(NewDocumentEvent(EventTypeDocumentFileUploaded, d, actor, f.Name))
	return previous, nil
}

// UpdateContent replaces fields and items
func (d *Document) UpdateContent(content Content, actor shared.Actor) error {
	if !d.CanManage(actor) {
		return ErrNotOwningDepartment
	}
	if len(content.Items) > 0 && !d.Type.AllowsItems() {
		return ErrItemsNotAllowed
	}
	d.Fields = content.Fields
	d.Items = content.Items
	d.reopen()
	d.Touch()
	d.AddDomainEvent(NewDocumentEvent(EventTypeDocumentEdited, d, actor, "fields updated"))
	return nil
}

// ReplaceItems swaps the line items, as done by a spreadsheet import
func (d *Document) ReplaceItems(items []Item, actor shared.Actor) error {
	if !d.CanManage(actor) {
		return ErrNotOwningDepartment
	}
	if !d.Type.AllowsItems() {
		return ErrItemsNotAllowed
	}
	d.Items = items
	d.reopen()
	d.Touch()
	d.AddDomainEvent(NewDocumentEvent(EventTypeDocumentEdited, d, actor, "line items imported"))
	return nil
}

// Verify marks the document as checked
func (d *Document) Verify(actor shared.Actor) error {
	if !actor.In(shared.DepartmentVerifier) {
		return ErrVerifierOnly
	}
	if d.Status != StatusPendingReview {
		return ErrAlreadyReviewed
	}
	now := time.Now()
	d.Status = StatusVerified
	d.VerifiedBy = &actor.UserID
	d.VerifiedByName = actor.Username
	d.VerifiedAt = &now
	d.RejectionReason = ""
	d.Touch()
	d.AddDomainEvent(NewDocumentEvent(EventTypeDocumentVerified, d, actor, ""))
	return nil
}

// Reject sends the document back to its department with a reason
func (d *Document) Reject(reason string, actor shared.Actor) error {
	if !actor.In(shared.DepartmentVerifier) {
		return ErrVerifierOnly
	}
	if d.Status != StatusPendingReview {
		return ErrAlreadyReviewed
	}
	reason = strings.TrimSpace(reason)
	if reason == "" || utf8.RuneCountInString(reason) > 500 {
		return ErrRejectionReason
	}
	now := time.Now()
	d.Status = StatusRejected
	d.VerifiedBy = &actor.UserID
	d.VerifiedByName = actor.Username
	d.VerifiedAt = &now
	d.RejectionReason = reason
	d.Touch()
	d.AddDomainEvent(NewDocumentEvent(EventTypeDocumentRejected, d, actor, reason))
	return nil
}

// MarkDeleted records the deletion event; the repository removes the rows
func (d *Document) MarkDeleted(actor shared.Actor) error {
	if !d.CanManage(actor) {
		return ErrNotOwningDepartment
	}
	name := ""
	if d.File != nil {
		name = d.File.Name
	}
	d.AddDomainEvent(NewDocumentEvent(EventTypeDocumentDeleted, d, actor, name))
	return nil
}

// reopen puts a reviewed document back in the queue after a change
func (d *Document) reopen() {
	if d.Status == StatusPendingReview {
		return
	}
	d.Status = StatusPendingReview
	d.VerifiedBy = nil
	d.VerifiedByName = ""
	d.VerifiedAt = nil
	d.RejectionReason = ""
}
