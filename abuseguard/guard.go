// Package abuseguard throttles per-user event streams with two tiers: a short
// per-event cooldown, and a counting window that escalates to a timed hard
// block once a user clears the cooldown gate too many times in a row.
package abuseguard

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

type State string

const (
	StateAllowed     State = "allowed"
	StateRateLimited State = "rate_limited"
	StateBlocked     State = "blocked"
)

type Decision struct {
	State State

	// Notify is set on a Blocked decision when the caller must inform the
	// user; a blocked user who was notified recently gets a silent drop.
	Notify bool

	// SecondsRemaining is the ceiling of the time left on a hard block.
	SecondsRemaining int

	// Unblocked is set on the first decision after a hard block expired, so
	// the caller may emit a one-time "you are unblocked" notice.
	Unblocked bool
}

type Guard struct {
	cfg    Config
	store  Store
	audit  AuditSink
	logger *slog.Logger
}

func New(cfg Config, store Store, audit AuditSink, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		cfg:    normalizeConfig(cfg),
		store:  store,
		audit:  audit,
		logger: logger,
	}
}

// Evaluate decides whether the current event for userID proceeds. Persistence
// failures propagate: a failed store round-trip never degrades to Allowed.
func (g *Guard) Evaluate(ctx context.Context, userID int64, cooldown time.Duration, now time.Time) (Decision, error) {
	rec, found, err := g.store.Get(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("abuseguard: load record for %d: %w", userID, err)
	}
	if !found {
		rec = Record{UserID: userID}
	}

	unblocked := false
	if !rec.BlockedUntil.IsZero() {
		if now.Before(rec.BlockedUntil) {
			return g.stillBlocked(ctx, rec, now)
		}
		// Lazy expiry: clear the block and reset the counting window.
		rec.BlockedUntil = time.Time{}
		rec.CommandCount = 0
		rec.LastNotifiedAt = time.Time{}
		unblocked = true
		g.emit(ctx, auditEvent(EventBlockLifted, userID, now, 0))
	}

	rec.CommandCount++
	if rec.CommandCount > g.cfg.MaxCommands {
		rec.BlockedUntil = now.Add(g.cfg.BlockDuration)
		rec.CommandCount = 0
		rec.LastNotifiedAt = now
		if err := g.store.Put(ctx, rec); err != nil {
			return Decision{}, fmt.Errorf("abuseguard: persist block for %d: %w", userID, err)
		}
		secs := ceilSeconds(g.cfg.BlockDuration)
		g.emit(ctx, auditEvent(EventBlockEntered, userID, now, secs))
		return Decision{State: StateBlocked, Notify: true, SecondsRemaining: secs, Unblocked: unblocked}, nil
	}

	if !rec.LastInteractionAt.IsZero() && now.Sub(rec.LastInteractionAt) < cooldown {
		// The counter still advanced, so users pacing themselves just above
		// the cooldown keep walking toward the hard block.
		if err := g.store.Put(ctx, rec); err != nil {
			return Decision{}, fmt.Errorf("abuseguard: persist record for %d: %w", userID, err)
		}
		g.emit(ctx, auditEvent(EventRateLimited, userID, now, 0))
		return Decision{State: StateRateLimited, Unblocked: unblocked}, nil
	}

	rec.LastInteractionAt = now
	if err := g.store.Put(ctx, rec); err != nil {
		return Decision{}, fmt.Errorf("abuseguard: persist record for %d: %w", userID, err)
	}
	return Decision{State: StateAllowed, Unblocked: unblocked}, nil
}

func (g *Guard) stillBlocked(ctx context.Context, rec Record, now time.Time) (Decision, error) {
	secs := ceilSeconds(rec.BlockedUntil.Sub(now))
	notify := rec.LastNotifiedAt.IsZero() || now.Sub(rec.LastNotifiedAt) > g.cfg.NotifyWindow
	if notify {
		rec.LastNotifiedAt = now
		if err := g.store.Put(ctx, rec); err != nil {
			return Decision{}, fmt.Errorf("abuseguard: persist notice for %d: %w", rec.UserID, err)
		}
	}
	return Decision{State: StateBlocked, Notify: notify, SecondsRemaining: secs}, nil
}

func (g *Guard) emit(ctx context.Context, e AuditEvent) {
	if g.audit == nil {
		return
	}
	if err := g.audit.Emit(ctx, e); err != nil {
		g.logger.Warn("throttle_audit_emit_error", "user_id", e.UserID, "kind", e.Kind, "error", err.Error())
	}
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
