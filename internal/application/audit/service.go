// Package audit records user actions in the Actions Log and serves the log
// to lists, pollers and live streams.
package audit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/audit"
	"github.com/logidocs/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	defaultSinceLimit = 100
	maxSinceLimit     = 500
)

// ErrInvalidCursor is returned for a negative seq cursor
var ErrInvalidCursor = shared.NewDomainError(shared.CodeInvalidInput, "Cursor must be a non-negative sequence number")

// Service reads the Actions Log
type Service struct {
	repo        audit.Repository
	logger      *zap.Logger
	replayBatch int
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithReplayBatch sets how many entries Replay reads per query
func WithReplayBatch(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.replayBatch = n
		}
	}
}

// NewService creates a new audit Service
func NewService(repo audit.Repository, logger *zap.Logger, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, logger: logger, replayBatch: maxSinceLimit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns entries newest first with filtering and pagination
func (s *Service) List(ctx context.Context, input ListInput) (shared.Paginated[ActionLogResponse], error) {
	filter, err := buildFilter(input)
	if err != nil {
		return shared.Paginated[ActionLogResponse]{}, err
	}
	entries, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ActionLogResponse]{}, err
	}
	return shared.NewPaginated(ToActionLogResponses(entries), total, filter.Page, filter.PageSize), nil
}

// Since returns up to limit entries with seq greater than after, oldest first
func (s *Service) Since(ctx context.Context, after int64, limit int) (*SinceResponse, error) {
	if after < 0 {
		return nil, ErrInvalidCursor
	}
	if limit <= 0 {
		limit = defaultSinceLimit
	}
	limit = min(limit, maxSinceLimit)

	// One extra row tells whether another page is waiting
	entries, err := s.repo.ListAfter(ctx, after, limit+1)
	if err != nil {
		return nil, err
	}
	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}

	next := after
	if len(entries) > 0 {
		next = entries[len(entries)-1].Seq
	}
	return &SinceResponse{
		Entries:   ToActionLogResponses(entries),
		NextAfter: next,
		HasMore:   hasMore,
	}, nil
}

// Replay calls fn for every stored entry with seq greater than after, in seq
// order, and returns the last seq delivered.
func (s *Service) Replay(ctx context.Context, after int64, fn func(*audit.ActionLog) error) (int64, error) {
	last := after
	for {
		entries, err := s.repo.ListAfter(ctx, last, s.replayBatch)
		if err != nil {
			return last, err
		}
		for _, e := range entries {
			if err := fn(e); err != nil {
				return last, err
			}
			last = e.Seq
		}
		if len(entries) < s.replayBatch {
			return last, nil
		}
		if err := ctx.Err(); err != nil {
			return last, err
		}
	}
}

// Recent returns the newest limit entries
func (s *Service) Recent(ctx context.Context, limit int) ([]ActionLogResponse, error) {
	entries, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return ToActionLogResponses(entries), nil
}

func buildFilter(input ListInput) (audit.Filter, error) {
	filter := audit.Filter{
		Filter: shared.Filter{
			Page:     input.Page,
			PageSize: input.PageSize,
			Search:   strings.TrimSpace(input.Search),
		},
		ProNumber: strings.TrimSpace(input.ProNumber),
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	if input.Department != "" {
		dept, err := shared.ParseDepartment(input.Department)
		if err != nil {
			return filter, err
		}
		filter.Department = &dept
	}
	if input.Action != "" {
		action := audit.Action(strings.ToUpper(input.Action))
		if !action.IsValid() {
			return filter, shared.NewDomainError(shared.CodeInvalidInput, "Unknown action")
		}
		filter.Action = &action
	}
	if input.TargetType != "" {
		target := audit.TargetType(strings.ToUpper(input.TargetType))
		if !target.IsValid() {
			return filter, shared.NewDomainError(shared.CodeInvalidInput, "Unknown target type")
		}
		filter.TargetType = &target
	}
	if input.UserID != "" {
		id, err := uuid.Parse(input.UserID)
		if err != nil {
			return filter, shared.NewDomainError(shared.CodeInvalidInput, "Invalid user id")
		}
		filter.UserID = &id
	}
	if input.From != "" {
		from, err := parseDay(input.From)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if input.To != "" {
		to, err := parseDay(input.To)
		if err != nil {
			return filter, err
		}
		// A bare date includes the whole day
		if len(input.To) == len(time.DateOnly) {
			to = to.AddDate(0, 0, 1)
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return filter, shared.NewDomainError(shared.CodeInvalidInput, "from must not be after to")
	}
	return filter, nil
}

// parseDay accepts YYYY-MM-DD or RFC 3339
func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, shared.NewDomainError(shared.CodeInvalidInput, "Dates must be YYYY-MM-DD")
}
