package handler

import (
	"context"

	"candidate-router/internal/pkg/logger"
	"candidate-router/pkg/events"
)

// EventSubscriber is the part of the NATS subscriber the audit trail needs.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler events.Handler) error
}

// AuditHandler writes every rollout and escalation event to a dedicated
// audit log.
type AuditHandler struct {
	audit  logger.ILogger
	logger logger.ILogger
}

func NewAuditHandler(audit logger.ILogger, log logger.ILogger) *AuditHandler {
	return &AuditHandler{audit: audit, logger: log}
}

func (h *AuditHandler) Start(ctx context.Context, sub EventSubscriber) error {
	return sub.Subscribe(ctx, "events.>", "router-audit", h.Handle)
}

func (h *AuditHandler) Handle(ctx context.Context, event events.Event) error {
	details := make(map[string]interface{}, len(event.Payload())+2)
	for k, v := range event.Payload() {
		details[k] = v
	}
	details["event"] = event.EventType()
	details["occurred_at"] = event.Timestamp()

	switch event.EventType() {
	case events.TypePhaseRolledBack:
		h.audit.Warn("AUDIT", "Rollout rolled back", details)
	case events.TypePhaseStarted, events.TypePhaseAdvanced:
		h.audit.Info("AUDIT", "Rollout phase changed", details)
	case events.TypeEscalationCreated:
		h.audit.Info("AUDIT", "Escalation opened", details)
	default:
		h.logger.Debug("AUDIT", "Ignoring unknown event", map[string]interface{}{"event": event.EventType()})
	}
	return nil
}
