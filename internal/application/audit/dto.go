package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/audit"
)

// ActionLogResponse is an Actions Log entry in API responses
type ActionLogResponse struct {
	ID          uuid.UUID         `json:"id"`
	Seq         int64             `json:"seq"`
	ShipmentID  *uuid.UUID        `json:"shipment_id,omitempty"`
	ProNumber   string            `json:"pro_number,omitempty"`
	DocumentID  *uuid.UUID        `json:"document_id,omitempty"`
	Action      string            `json:"action"`
	TargetType  string            `json:"target_type"`
	TargetLabel string            `json:"target_label"`
	Description string            `json:"description"`
	Department  string            `json:"department"`
	UserID      uuid.UUID         `json:"user_id"`
	Username    string            `json:"username"`
	Metadata    map[string]string `json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
}

// SinceResponse is a page of entries after a cursor. NextAfter is the seq to
// pass on the next poll; it equals the request cursor when nothing is new.
type SinceResponse struct {
	Entries   []ActionLogResponse `json:"entries"`
	NextAfter int64               `json:"next_after"`
	HasMore   bool                `json:"has_more"`
}

// ListInput contains filters for listing entries
type ListInput struct {
	Page       int
	PageSize   int
	Search     string
	ProNumber  string
	Department string
	Action     string
	TargetType string
	UserID     string
	From       string
	To         string
}

// ToActionLogResponse converts a domain entry
func ToActionLogResponse(e *audit.ActionLog) ActionLogResponse {
	metadata := e.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	return ActionLogResponse{
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
		Metadata:    metadata,
		CreatedAt:   e.CreatedAt,
	}
}

// ToActionLogResponses converts a slice of domain entries
func ToActionLogResponses(entries []*audit.ActionLog) []ActionLogResponse {
	out := make([]ActionLogResponse, len(entries))
	for i, e := range entries {
		out[i] = ToActionLogResponse(e)
	}
	return out
}
