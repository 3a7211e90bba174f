package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Evolvus/evolvus-application/domain"
	"github.com/google/uuid"
)

type auditInfo struct {
	application string
	source      string
	actor       string
	ipAddress   string
}

// auditor builds and dispatches audit events for a facade. Events are
// fresh values per call; dispatch is fire-and-forget and a sink failure
// is logged and counted, never surfaced to the caller.
type auditor struct {
	logger *slog.Logger
	sink   domain.AuditSink
	audit  auditInfo
}

func (a *auditor) event(name, status, actor string, keyData any, details string) domain.AuditEvent {
	if actor == "" {
		actor = a.audit.actor
	}
	payload, err := json.Marshal(keyData)
	if err != nil {
		a.logger.Warn("could not serialize audit key data", "event", name, "error", err)
	}
	return domain.AuditEvent{
		EventID:       uuid.New(),
		Application:   a.audit.application,
		Source:        a.audit.source,
		Name:          name,
		CreatedBy:     actor,
		IPAddress:     a.audit.ipAddress,
		Status:        status,
		EventDateTime: time.Now().UTC(),
		KeyDataAsJSON: string(payload),
		Details:       details,
	}
}

func (a *auditor) emit(event domain.AuditEvent) {
	if a.sink == nil {
		return
	}
	// Detached from the request: once dispatched, the event outlives the
	// caller's context and never blocks the primary result.
	go func() {
		if err := a.sink.Post(context.Background(), event); err != nil {
			a.logger.Warn("audit dispatch failed", "event", event.Name, "error", err)
			auditDispatchFailures.Inc()
		}
	}()
}
