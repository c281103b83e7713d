package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/rcssa/match-api/internal/platform/logger"
)

// AuditLogHandler writes each event to the structured log at info level.
type AuditLogHandler struct {
	logger *slog.Logger
}

var _ EventHandler = (*AuditLogHandler)(nil)

// NewAuditLogHandler creates an AuditLogHandler. If logger is nil, a default logger will be used.
func NewAuditLogHandler(logger *slog.Logger) *AuditLogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogHandler{logger: logger.With(slog.String("component", "audit"))}
}

// HandleEvent implements EventHandler. A request-scoped logger in ctx, such
// as one carrying a trace id, takes precedence.
func (h *AuditLogHandler) HandleEvent(ctx context.Context, event *Event) error {
	log := logger.FromContextOrDefault(ctx, h.logger)

	var payload map[string]any
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	log.LogAttrs(ctx, slog.LevelInfo, "audit event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.Time("event_time", event.CreatedAt),
		slog.Any("payload", payload))
	return nil
}
