package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
)

// Filter narrows Actions Log listings
type Filter struct {
	shared.Filter
	ProNumber  string
	Department *shared.Department
	Action     *Action
	TargetType *TargetType
	UserID     *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// Repository stores Actions Log entries. It has no update or delete.
type Repository interface {
	// Append stores the entry and fills in its Seq
	Append(ctx context.Context, entry *ActionLog) error
	// FindAll lists entries newest first
	FindAll(ctx context.Context, filter Filter) ([]*ActionLog, int64, error)
	// ListAfter returns up to limit entries with seq greater than after, oldest first
	ListAfter(ctx context.Context, after int64, limit int) ([]*ActionLog, error)
	// Recent returns the newest limit entries
	Recent(ctx context.Context, limit int) ([]*ActionLog, error)
}
