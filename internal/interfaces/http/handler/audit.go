package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appaudit "github.com/logidocs/backend/internal/application/audit"
	"github.com/logidocs/backend/internal/domain/audit"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/infrastructure/realtime"
	"github.com/logidocs/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	actionLogEvent         = "action_log"
	defaultStreamHeartbeat = 30 * time.Second
	lastEventIDHeader      = "Last-Event-ID"
	defaultSincePollLimit  = 100
)

// AuditService is the part of audit.Service the handler uses
type AuditService interface {
	List(ctx context.Context, input appaudit.ListInput) (shared.Paginated[appaudit.ActionLogResponse], error)
	Since(ctx context.Context, after int64, limit int) (*appaudit.SinceResponse, error)
	Replay(ctx context.Context, after int64, fn func(*audit.ActionLog) error) (int64, error)
}

// ActionStream hands out live subscriptions to new Actions Log entries
type ActionStream interface {
	Subscribe(userID uuid.UUID) (*realtime.Subscription, error)
	Unsubscribe(sub *realtime.Subscription)
}

// AuditHandler serves the Actions Log as a list, a poll feed and an SSE stream
type AuditHandler struct {
	BaseHandler
	auditService AuditService
	stream       ActionStream
	heartbeat    time.Duration
	pollLimit    int
	logger       *zap.Logger
}

// AuditHandlerOption configures an AuditHandler
type AuditHandlerOption func(*AuditHandler)

// WithStreamHeartbeat sets the interval of keep-alive comments on the stream
func WithStreamHeartbeat(interval time.Duration) AuditHandlerOption {
	return func(h *AuditHandler) {
		if interval > 0 {
			h.heartbeat = interval
		}
	}
}

// WithPollLimit sets the default page size of the since feed
func WithPollLimit(limit int) AuditHandlerOption {
	return func(h *AuditHandler) {
		if limit > 0 {
			h.pollLimit = limit
		}
	}
}

// WithAuditLogger sets the logger for stream lifecycle messages
func WithAuditLogger(logger *zap.Logger) AuditHandlerOption {
	return func(h *AuditHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService AuditService, stream ActionStream, opts ...AuditHandlerOption) *AuditHandler {
	h := &AuditHandler{
		auditService: auditService,
		stream:       stream,
		heartbeat:    defaultStreamHeartbeat,
		pollLimit:    defaultSincePollLimit,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// List godoc
// @ID           listActionLogs
// @Summary      List the Actions Log
// @Description  Entries newest first. from and to are inclusive days (YYYY-MM-DD).
// @Tags         actions-log
// @Produce      json
// @Param        page        query int    false "Page number" default(1)
// @Param        page_size   query int    false "Page size" default(20)
// @Param        search      query string false "Free text over description and target"
// @Param        pro_number  query string false "PRO number"
// @Param        department  query string false "Department" Enums(SHIPMENT, TRUCKING, FINANCE, VERIFIER)
// @Param        action      query string false "Action" Enums(CREATE, UPLOAD, EDIT, DELETE, VERIFY, REJECT, STATUS_CHANGE, REMARK)
// @Param        target_type query string false "Target type" Enums(SHIPMENT, DOCUMENT, CONTAINER, TRUCKING, REMARK)
// @Param        user_id     query string false "User ID" format(uuid)
// @Param        from        query string false "First day"
// @Param        to          query string false "Last day"
// @Success      200 {object} APIResponse[[]appaudit.ActionLogResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	q := listQuery(c)
	result, err := h.auditService.List(c.Request.Context(), appaudit.ListInput{
		Page:       q.Page,
		PageSize:   q.PageSize,
		Search:     q.Search,
		ProNumber:  c.Query("pro_number"),
		Department: strings.ToUpper(c.Query("department")),
		Action:     strings.ToUpper(c.Query("action")),
		TargetType: strings.ToUpper(c.Query("target_type")),
		UserID:     c.Query("user_id"),
		From:       c.Query("from"),
		To:         c.Query("to"),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page(c, result)
}

// Since godoc
// @ID           pollActionLogs
// @Summary      Poll new entries
// @Description  Entries with seq greater than after, oldest first. Pass next_after back on the next poll.
// @Tags         actions-log
// @Produce      json
// @Param        after query int false "Last seen seq" default(0)
// @Param        limit query int false "Maximum entries" default(100)
// @Success      200 {object} APIResponse[appaudit.SinceResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audit-logs/since [get]
func (h *AuditHandler) Since(c *gin.Context) {
	after, ok := h.cursor(c, c.DefaultQuery("after", "0"))
	if !ok {
		return
	}
	limit := h.pollLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.Error(c, http.StatusBadRequest, shared.CodeInvalidInput, "limit must be a positive integer")
			return
		}
		limit = n
	}

	result, err := h.auditService.Since(c.Request.Context(), after, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Stream godoc
// @ID           streamActionLogs
// @Summary      Live Actions Log
// @Description  Server-Sent Events. Each entry is an "action_log" event whose id is the entry seq. Reconnect with Last-Event-ID (or ?after=) to replay what was missed. The access token may be passed as ?access_token= for EventSource clients.
// @Tags         actions-log
// @Produce      text/event-stream
// @Param        after        query  int    false "Replay entries after this seq"
// @Param        Last-Event-ID header string false "Replay entries after this seq"
// @Success      200 {string} string "SSE stream"
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audit-logs/stream [get]
func (h *AuditHandler) Stream(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	after := int64(-1)
	if raw := c.GetHeader(lastEventIDHeader); raw != "" {
		if after, ok = h.cursor(c, raw); !ok {
			return
		}
	} else if raw := c.Query("after"); raw != "" {
		if after, ok = h.cursor(c, raw); !ok {
			return
		}
	}

	// Subscribe before replaying so nothing written in between is lost
	sub, err := h.stream.Subscribe(actor.UserID)
	if err != nil {
		if errors.Is(err, realtime.ErrTooManyClients) || errors.Is(err, realtime.ErrHubClosed) {
			h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeStreamFull, "Live updates are unavailable, poll /audit-logs/since instead")
			return
		}
		h.HandleError(c, err)
		return
	}
	defer h.stream.Unsubscribe(sub)

	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	log := h.logger.With(
		zap.String("subscription_id", sub.ID),
		zap.String("user_id", actor.UserID.String()))
	log.Info("Actions Log stream opened", zap.Int64("after", after))
	defer log.Info("Actions Log stream closed")

	fmt.Fprintf(w, "retry: %d\n\n", (3 * time.Second).Milliseconds())
	w.Flush()

	ctx := c.Request.Context()
	// Live entries can arrive out of seq order; only those already sent by
	// the replay are skipped
	replayed := make(map[int64]struct{})
	if after >= 0 {
		_, err = h.auditService.Replay(ctx, after, func(e *audit.ActionLog) error {
			replayed[e.Seq] = struct{}{}
			return writeActionLog(w, e)
		})
		if err != nil {
			if ctx.Err() == nil {
				log.Warn("Actions Log replay failed", zap.Error(err))
			}
			return
		}
		w.Flush()
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": heartbeat %d\n\n", time.Now().Unix()); err != nil {
				return
			}
			w.Flush()
		case entry, ok := <-sub.C:
			if !ok {
				return
			}
			if _, sent := replayed[entry.Seq]; sent {
				delete(replayed, entry.Seq)
				continue
			}
			if err := writeActionLog(w, entry); err != nil {
				log.Debug("Actions Log stream write failed", zap.Error(err))
				return
			}
			w.Flush()
		}
	}
}

func (h *AuditHandler) cursor(c *gin.Context, raw string) (int64, bool) {
	after, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || after < 0 {
		h.Error(c, http.StatusBadRequest, shared.CodeInvalidInput, "Cursor must be a non-negative sequence number")
		return 0, false
	}
	return after, true
}

// writeActionLog writes one entry as an SSE event
func writeActionLog(w io.Writer, e *audit.ActionLog) error {
	data, err := json.Marshal(appaudit.ToActionLogResponse(e))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\nid: %d\ndata: %s\n\n", actionLogEvent, e.Seq, data)
	return err
}
