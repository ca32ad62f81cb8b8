package abuseguard

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventBlockEntered EventKind = "block_entered"
	EventBlockLifted  EventKind = "block_lifted"
	EventRateLimited  EventKind = "rate_limited"
)

type AuditEvent struct {
	ID               string    `json:"id"`
	Kind             EventKind `json:"kind"`
	UserID           int64     `json:"user_id"`
	At               time.Time `json:"at"`
	SecondsRemaining int       `json:"seconds_remaining,omitempty"`
}

type AuditSink interface {
	Emit(ctx context.Context, e AuditEvent) error
}

func auditEvent(kind EventKind, userID int64, at time.Time, secs int) AuditEvent {
	return AuditEvent{
		ID:               uuid.NewString(),
		Kind:             kind,
		UserID:           userID,
		At:               at.UTC(),
		SecondsRemaining: secs,
	}
}
