// Package audit holds the append-only Actions Log: one entry per user action
// against shipments, containers, trucking status, remarks and documents.
package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
)

// Action is what the user did
type Action string

const (
	ActionCreate       Action = "CREATE"
	ActionUpload       Action = "UPLOAD"
	ActionEdit         Action = "EDIT"
	ActionDelete       Action = "DELETE"
	ActionVerify       Action = "VERIFY"
	ActionReject       Action = "REJECT"
	ActionStatusChange Action = "STATUS_CHANGE"
	ActionRemark       Action = "REMARK"
)

// IsValid checks if the action is known
func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpload, ActionEdit, ActionDelete,
		ActionVerify, ActionReject, ActionStatusChange, ActionRemark:
		return true
	}
	return false
}

// TargetType is the kind of record an action was applied to
type TargetType string

const (
	TargetShipment  TargetType = "SHIPMENT"
	TargetDocument  TargetType = "DOCUMENT"
	TargetContainer TargetType = "CONTAINER"
	TargetTrucking  TargetType = "TRUCKING"
	TargetRemark    TargetType = "REMARK"
)

// IsValid checks if the target type is known
func (t TargetType) IsValid() bool {
	switch t {
	case TargetShipment, TargetDocument, TargetContainer, TargetTrucking, TargetRemark:
		return true
	}
	return false
}

// ActionLog is one Actions Log entry. Seq is assigned by the store and
// strictly increases, so clients use it as a cursor.
type ActionLog struct {
	ID          uuid.UUID
	Seq         int64
	ShipmentID  *uuid.UUID
	ProNumber   string
	DocumentID  *uuid.UUID
	Action      Action
	TargetType  TargetType
	TargetLabel string
	Description string
	Department  shared.Department
	UserID      uuid.UUID
	Username    string
	Metadata    map[string]string
	CreatedAt   time.Time
}

// NewActionLog creates an entry attributed to actor
func NewActionLog(action Action, target TargetType, actor shared.Actor) *ActionLog {
	return &ActionLog{
		ID:         uuid.New(),
		Action:     action,
		TargetType: target,
		Department: actor.Department,
		UserID:     actor.UserID,
		Username:   actor.Username,
		Metadata:   map[string]string{},
		CreatedAt:  time.Now(),
	}
}

// ForShipment sets the shipment the entry belongs to
func (l *ActionLog) ForShipment(id uuid.UUID, pro string) *ActionLog {
	l.ShipmentID = &id
	l.ProNumber = pro
	return l
}

// ForDocument sets the document the entry refers to
func (l *ActionLog) ForDocument(id uuid.UUID) *ActionLog {
	l.DocumentID = &id
	return l
}

// Describe sets the label and human readable description
func (l *ActionLog) Describe(label, description string) *ActionLog {
	l.TargetLabel = label
	l.Description = description
	return l
}

// With adds a metadata entry; empty values are skipped
func (l *ActionLog) With(key, value string) *ActionLog {
	if value != "" {
		l.Metadata[key] = value
	}
	return l
}
