package conversation

import "context"

// State is the per-user conversation record. Artifacts holds the asset
// references collected during the current step sequence; TicketID is the id
// allocated when a ticket workflow started, zero otherwise.
type State struct {
	UserID    int64    `json:"user_id"`
	Step      string   `json:"step"`
	Artifacts []string `json:"artifacts,omitempty"`
	TicketID  int64    `json:"ticket_id,omitempty"`
}

type Store interface {
	Get(ctx context.Context, userID int64) (State, bool, error)
	Put(ctx context.Context, state State) error
}
