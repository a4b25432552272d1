package audit

import (
	"context"
	"fmt"

	"github.com/logidocs/backend/internal/domain/audit"
	"github.com/logidocs/backend/internal/domain/document"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/domain/shipment"
	"github.com/logidocs/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Broadcaster delivers stored entries to live subscribers
type Broadcaster interface {
	Publish(ctx context.Context, entry *audit.ActionLog) error
}

// ActionLogHandler turns shipment and document events into Actions Log
// entries and broadcasts each stored entry.
type ActionLogHandler struct {
	repo        audit.Repository
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewActionLogHandler creates the handler. broadcaster may be nil.
func NewActionLogHandler(repo audit.Repository, broadcaster Broadcaster, logger *zap.Logger) *ActionLogHandler {
	return &ActionLogHandler{
		repo:        repo,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ActionLogHandler) EventTypes() []string {
	return []string{
		shipment.EventTypeShipmentCreated,
		shipment.EventTypeShipmentUpdated,
		shipment.EventTypeShipmentStatusChanged,
		shipment.EventTypeTruckingStatusChanged,
		shipment.EventTypeContainerAdded,
		shipment.EventTypeContainerUpdated,
		shipment.EventTypeContainerRemoved,
		shipment.EventTypeRemarkAdded,
		shipment.EventTypeRemarkEdited,
		shipment.EventTypeRemarkDeleted,
		document.EventTypeDocumentCreated,
		document.EventTypeDocumentFileUploaded,
		document.EventTypeDocumentEdited,
		document.EventTypeDocumentVerified,
		document.EventTypeDocumentRejected,
		document.EventTypeDocumentDeleted,
	}
}

// Handle appends the entry for event and broadcasts it
func (h *ActionLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	entry, err := EntryFromEvent(event)
	if err != nil {
		return err
	}
	if err := h.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("append action log: %w", err)
	}

	if h.broadcaster != nil {
		if err := h.broadcaster.Publish(ctx, entry); err != nil {
			// Subscribers catch up by replaying from their last seq
			logger.Enrich(ctx, h.logger).Warn("Failed to broadcast action log entry",
				zap.Int64("seq", entry.Seq),
				zap.Error(err))
		}
	}
	return nil
}

// EntryFromEvent maps a domain event to its Actions Log entry
func EntryFromEvent(event shared.DomainEvent) (*audit.ActionLog, error) {
	actor := event.EventActor()
	var entry *audit.ActionLog

	switch e := event.(type) {
	case *shipment.ShipmentCreatedEvent:
		entry = audit.NewActionLog(audit.ActionCreate, audit.TargetShipment, actor).
			ForShipment(e.ShipmentID, e.ProNumber).
			Describe("PRO "+e.ProNumber, fmt.Sprintf("Opened PRO %s for %s", e.ProNumber, e.CustomerName)).
			With("customer_name", e.CustomerName)
	case *shipment.ShipmentUpdatedEvent:
		entry = audit.NewActionLog(audit.ActionEdit, audit.TargetShipment, actor).
			ForShipment(e.ShipmentID, e.ProNumber).
			Describe("PRO "+e.ProNumber, "Edited shipment details")
	case *shipment.ShipmentStatusChangedEvent:
		entry = audit.NewActionLog(audit.ActionStatusChange, audit.TargetShipment, actor).
			ForShipment(e.ShipmentID, e.ProNumber).
			Describe("PRO "+e.ProNumber, fmt.Sprintf("Shipment status %s → %s", e.From, e.To)).
			With("from", string(e.From)).
			With("to", string(e.To))
	case *shipment.TruckingStatusChangedEvent:
		entry = audit.NewActionLog(audit.ActionStatusChange, audit.TargetTrucking, actor).
			ForShipment(e.ShipmentID, e.ProNumber).
			Describe("PRO "+e.ProNumber, fmt.Sprintf("Trucking status %s → %s", e.From, e.To)).
			With("from", string(e.From)).
			With("to", string(e.To))
	case *shipment.ContainerEvent:
		action, verb := containerAction(e.EventType())
		entry = audit.NewActionLog(action, audit.TargetContainer, actor).
			ForShipment(e.ShipmentID, e.ProNumber).
			Describe(e.ContainerNumber, fmt.Sprintf("%s container %s", verb, e.ContainerNumber)).
			With("container_id", e.ContainerID.String()).
			With("seal_number", e.SealNumber).
			With("size", string(e.Size))
	case *shipment.RemarkEvent:
		entry = audit.NewActionLog(audit.ActionRemark, audit.TargetRemark, actor).
			ForShipment(e.ShipmentID, e.ProNumber).
			Describe("Remark", remarkDescription(e)).
			With("remark_id", e.RemarkID.String()).
			With("change", remarkChange(e.EventType()))
	case *document.DocumentEvent:
		entry = documentEntry(e, actor)
	default:
		return nil, fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	entry.CreatedAt = event.OccurredAt()
	return entry, nil
}

func documentEntry(e *document.DocumentEvent, actor shared.Actor) *audit.ActionLog {
	label := e.DocumentType.Label()
	var (
		action      audit.Action
		description string
	)
	switch e.EventType() {
	case document.EventTypeDocumentCreated:
		action, description = audit.ActionCreate, "Created "+label
	case document.EventTypeDocumentFileUploaded:
		action, description = audit.ActionUpload, "Uploaded "+label
		if e.Detail != "" {
			description += " (" + e.Detail + ")"
		}
	case document.EventTypeDocumentEdited:
		action, description = audit.ActionEdit, "Edited "+label
		if e.Detail != "" {
			description += " (" + e.Detail + ")"
		}
	case document.EventTypeDocumentVerified:
		action, description = audit.ActionVerify, "Verified "+label
	case document.EventTypeDocumentRejected:
		action, description = audit.ActionReject, "Rejected "+label
		if e.Detail != "" {
			description += ": " + e.Detail
		}
	default:
		action, description = audit.ActionDelete, "Deleted "+label
	}

	entry := audit.NewActionLog(action, audit.TargetDocument, actor).
		ForShipment(e.ShipmentID, e.ProNumber).
		ForDocument(e.DocumentID).
		Describe(label, description).
		With("document_type", string(e.DocumentType)).
		With("status", string(e.Status))
	if action == audit.ActionUpload {
		entry.With("file_name", e.Detail)
	}
	return entry
}

func containerAction(eventType string) (audit.Action, string) {
	switch eventType {
	case shipment.EventTypeContainerAdded:
		return audit.ActionCreate, "Added"
	case shipment.EventTypeContainerRemoved:
		return audit.ActionDelete, "Removed"
	}
	return audit.ActionEdit, "Updated"
}

func remarkChange(eventType string) string {
	switch eventType {
	case shipment.EventTypeRemarkEdited:
		return "edited"
	case shipment.EventTypeRemarkDeleted:
		return "deleted"
	}
	return "added"
}

func remarkDescription(e *shipment.RemarkEvent) string {
	switch e.EventType() {
	case shipment.EventTypeRemarkEdited:
		return "Edited remark: " + e.Excerpt
	case shipment.EventTypeRemarkDeleted:
		return "Deleted remark: " + e.Excerpt
	}
	return "Remark: " + e.Excerpt
}

// Ensure ActionLogHandler implements shared.EventHandler
var _ shared.EventHandler = (*ActionLogHandler)(nil)
