package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/audit"
	"github.com/logidocs/backend/internal/domain/shared"
)

// ActionLogModel is the persistence model for an Actions Log entry.
// Seq is a bigserial filled in by the database.
type ActionLogModel struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key"`
	Seq         int64             `gorm:"autoIncrement;uniqueIndex;<-:false"`
	ShipmentID  *uuid.UUID        `gorm:"type:uuid;index"`
	ProNumber   string            `gorm:"type:varchar(7);index"`
	DocumentID  *uuid.UUID        `gorm:"type:uuid;index"`
	Action      audit.Action      `gorm:"type:varchar(20);not null;index"`
	TargetType  audit.TargetType  `gorm:"type:varchar(20);not null"`
	TargetLabel string            `gorm:"type:varchar(200)"`
	Description string            `gorm:"type:varchar(1000)"`
	Department  shared.Department `gorm:"type:varchar(20);not null;index"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	Username    string            `gorm:"type:varchar(50)"`
	Metadata    string            `gorm:"type:jsonb;default:'{}'"`
	CreatedAt   time.Time         `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ActionLogModel) TableName() string {
	return "action_logs"
}

// ToDomain converts the persistence model to a domain ActionLog.
// Unreadable metadata maps to an empty map.
func (m *ActionLogModel) ToDomain() *audit.ActionLog {
	metadata := map[string]string{}
	if m.Metadata != "" {
		_ = json.Unmarshal([]byte(m.Metadata), &metadata)
	}
	return &audit.ActionLog{
		ID:          m.ID,
		Seq:         m.Seq,
		ShipmentID:  m.ShipmentID,
		ProNumber:   m.ProNumber,
		DocumentID:  m.DocumentID,
		Action:      m.Action,
		TargetType:  m.TargetType,
		TargetLabel: m.TargetLabel,
		Description: m.Description,
		Department:  m.Department,
		UserID:      m.UserID,
		Username:    m.Username,
		Metadata:    metadata,
		CreatedAt:   m.CreatedAt,
	}
}

// ActionLogModelFromDomain creates a persistence model from a domain ActionLog
func ActionLogModelFromDomain(l *audit.ActionLog) (*ActionLogModel, error) {
	metadata := "{}"
	if len(l.Metadata) > 0 {
		b, err := json.Marshal(l.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = string(b)
	}
	return &ActionLogModel{
		ID:          l.ID,
		Seq:         l.Seq,
		ShipmentID:  l.ShipmentID,
		ProNumber:   l.ProNumber,
		DocumentID:  l.DocumentID,
		Action:      l.Action,
		TargetType:  l.TargetType,
		TargetLabel: l.TargetLabel,
		Description: l.Description,
		Department:  l.Department,
		UserID:      l.UserID,
		Username:    l.Username,
		Metadata:    metadata,
		CreatedAt:   l.CreatedAt,
	}, nil
}
