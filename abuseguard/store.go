package abuseguard

import (
	"context"
	"time"
)

// Record is the per-user throttle state. Zero timestamps mean "unset";
// an expired BlockedUntil is treated as unset (lazy expiry).
type Record struct {
	UserID            int64     `json:"user_id"`
	LastInteractionAt time.Time `json:"last_interaction_at,omitzero"`
	BlockedUntil      time.Time `json:"blocked_until,omitzero"`
	CommandCount      int       `json:"command_count"`
	LastNotifiedAt    time.Time `json:"last_notified_at,omitzero"`
}

type Store interface {
	Get(ctx context.Context, userID int64) (Record, bool, error)
	Put(ctx context.Context, record Record) error
}
