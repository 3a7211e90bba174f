package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	AuditStatusSuccess = "success"
	AuditStatusFailure = "failure"
)

// AuditEvent is the docket collaborator's event shape. Events are
// immutable values built fresh per operation; nothing is shared between
// concurrent calls.
type AuditEvent struct {
	EventID       uuid.UUID `json:"eventId"`
	Application   string    `json:"application"`
	Source        string    `json:"source"`
	Name          string    `json:"name"`
	CreatedBy     string    `json:"createdBy"`
	IPAddress     string    `json:"ipAddress"`
	Status        string    `json:"status"`
	EventDateTime time.Time `json:"eventDateTime"`
	KeyDataAsJSON string    `json:"keyDataAsJSON"`
	Details       string    `json:"details,omitempty"`
	Level         int       `json:"level"`
}

// AuditSink receives audit events. Posting is append-only; a sink
// failure must never gate the operation that produced the event.
type AuditSink interface {
	Post(context.Context, AuditEvent) error
}
