package realtime

import (
	"time"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/audit"
	"github.com/logidocs/backend/internal/domain/shared"
)

// message is the Pub/Sub wire form of an Actions Log entry
type message struct {
	ID          uuid.UUID         `json:"id"`
	Seq         int64             `json:"seq"`
	ShipmentID  *uuid.UUID        `json:"shipment_id,omitempty"`
	ProNumber   string            `json:"pro_number,omitempty"`
	DocumentID  *uuid.UUID        `json:"document_id,omitempty"`
	Action      string            `json:"action"`
	TargetType  string            `json:"target_type"`
	TargetLabel string            `json:"target_label,omitempty"`
	Description string            `json:"description,omitempty"`
	Department  string            `json:"department"`
	UserID      uuid.UUID         `json:"user_id"`
	Username    string            `json:"username"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func toMessage(e *audit.ActionLog) message {
	return message{
		ID:          e.ID,
		Seq:         e.Seq,
		ShipmentID:  e.ShipmentID,
		ProNumber:   e.ProNumber,
		DocumentID:  e.DocumentID,
		Action:      string(e.Action),
		TargetType:  string(e.TargetType),
		TargetLabel: e.TargetLabel,
		Description: e.Description,
		Department:  string(e.Department),
		UserID:      e.UserID,
		Username:    e.Username,
		Metadata:    e.Metadata,
		CreatedAt:   e.CreatedAt,
	}
}

func (m message) toEntry() *audit.ActionLog {
	metadata := m.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	return &audit.ActionLog{
		ID:          m.ID,
		Seq:         m.Seq,
		ShipmentID:  m.ShipmentID,
		ProNumber:   m.ProNumber,
		DocumentID:  m.DocumentID,
		Action:      audit.Action(m.Action),
		TargetType:  audit.TargetType(m.TargetType),
		TargetLabel: m.TargetLabel,
		Description: m.Description,
		Department:  shared.Department(m.Department),
		UserID:      m.UserID,
		Username:    m.Username,
		Metadata:    metadata,
		CreatedAt:   m.CreatedAt,
	}
}
