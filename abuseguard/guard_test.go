package abuseguard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type memStore struct {
	mu   sync.Mutex
	recs map[int64]Record

	getErr error
	putErr error
}

func newMemStore() *memStore {
	return &memStore{recs: make(map[int64]Record)}
}

func (s *memStore) Get(ctx context.Context, userID int64) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return Record{}, false, s.getErr
	}
	rec, ok := s.recs[userID]
	return rec, ok, nil
}

func (s *memStore) Put(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.recs[record.UserID] = record
	return nil
}

type memSink struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (s *memSink) Emit(ctx context.Context, e AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *memSink) kinds() []EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EventKind, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Kind)
	}
	return out
}

func TestEvaluateAllowsSpacedEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	g := New(DefaultConfig(), store, nil, nil)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		dec, err := g.Evaluate(ctx, 7, 2*time.Second, now)
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if dec.State != StateAllowed {
			t.Fatalf("Evaluate() state = %q, want %q", dec.State, StateAllowed)
		}
		now = now.Add(3 * time.Second)
	}
}

func TestEvaluateBlocksAfterMaxCommands(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	sink := &memSink{}
	g := New(DefaultConfig(), store, sink, nil)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// First event passes, the next four burn the counting window under
	// cooldown, the sixth crosses the threshold.
	for i := 0; i < 5; i++ {
		dec, err := g.Evaluate(ctx, 7, 2*time.Second, now)
		if err != nil {
			t.Fatalf("Evaluate() #%d error = %v", i+1, err)
		}
		want := StateRateLimited
		if i == 0 {
			want = StateAllowed
		}
		if dec.State != want {
			t.Fatalf("Evaluate() #%d state = %q, want %q", i+1, dec.State, want)
		}
	}

	dec, err := g.Evaluate(ctx, 7, 2*time.Second, now)
	if err != nil {
		t.Fatalf("Evaluate() #6 error = %v", err)
	}
	if dec.State != StateBlocked {
		t.Fatalf("Evaluate() #6 state = %q, want %q", dec.State, StateBlocked)
	}
	if !dec.Notify {
		t.Fatalf("Evaluate() #6 notify = false, want true")
	}
	if dec.SecondsRemaining != 30 {
		t.Fatalf("Evaluate() #6 seconds = %d, want 30", dec.SecondsRemaining)
	}

	rec := store.recs[7]
	if rec.CommandCount != 0 {
		t.Fatalf("record count after block = %d, want 0", rec.CommandCount)
	}
	if !rec.BlockedUntil.Equal(now.Add(30 * time.Second)) {
		t.Fatalf("record blocked_until = %v, want %v", rec.BlockedUntil, now.Add(30*time.Second))
	}

	kinds := sink.kinds()
	if len(kinds) == 0 || kinds[len(kinds)-1] != EventBlockEntered {
		t.Fatalf("audit kinds = %v, want trailing %q", kinds, EventBlockEntered)
	}
}

func TestBlockedNotifySuppression(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	g := New(DefaultConfig(), store, nil, nil)

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.recs[7] = Record{
		UserID:         7,
		BlockedUntil:   t0.Add(30 * time.Second),
		LastNotifiedAt: t0,
	}

	// Inside the notify window: silent drop.
	dec, err := g.Evaluate(ctx, 7, 2*time.Second, t0.Add(5*time.Second))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if dec.State != StateBlocked || dec.Notify {
		t.Fatalf("Evaluate() = %+v, want blocked without notify", dec)
	}
	if dec.SecondsRemaining != 25 {
		t.Fatalf("Evaluate() seconds = %d, want 25", dec.SecondsRemaining)
	}

	// Past the notify window: one more notice, stamped.
	dec, err = g.Evaluate(ctx, 7, 2*time.Second, t0.Add(11*time.Second))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if dec.State != StateBlocked || !dec.Notify {
		t.Fatalf("Evaluate() = %+v, want blocked with notify", dec)
	}
	if dec.SecondsRemaining != 19 {
		t.Fatalf("Evaluate() seconds = %d, want 19", dec.SecondsRemaining)
	}
	if got := store.recs[7].LastNotifiedAt; !got.Equal(t0.Add(11 * time.Second)) {
		t.Fatalf("last_notified_at = %v, want %v", got, t0.Add(11*time.Second))
	}
}

func TestBlockExpiryResetsWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	sink := &memSink{}
	g := New(DefaultConfig(), store, sink, nil)

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.recs[7] = Record{
		UserID:         7,
		BlockedUntil:   t0.Add(30 * time.Second),
		LastNotifiedAt: t0,
		CommandCount:   3,
	}

	dec, err := g.Evaluate(ctx, 7, 2*time.Second, t0.Add(31*time.Second))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if dec.State != StateAllowed {
		t.Fatalf("Evaluate() state = %q, want %q", dec.State, StateAllowed)
	}
	if !dec.Unblocked {
		t.Fatalf("Evaluate() unblocked = false, want true")
	}

	rec := store.recs[7]
	if !rec.BlockedUntil.IsZero() {
		t.Fatalf("record blocked_until = %v, want zero", rec.BlockedUntil)
	}
	if rec.CommandCount != 1 {
		t.Fatalf("record count = %d, want 1", rec.CommandCount)
	}
	if !rec.LastNotifiedAt.IsZero() {
		t.Fatalf("record last_notified_at = %v, want zero", rec.LastNotifiedAt)
	}

	kinds := sink.kinds()
	if len(kinds) != 1 || kinds[0] != EventBlockLifted {
		t.Fatalf("audit kinds = %v, want [%q]", kinds, EventBlockLifted)
	}
}

func TestRateLimitedStillAdvancesCounter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	g := New(DefaultConfig(), store, nil, nil)

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if _, err := g.Evaluate(ctx, 7, 2*time.Second, t0); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	dec, err := g.Evaluate(ctx, 7, 2*time.Second, t0.Add(1*time.Second))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if dec.State != StateRateLimited {
		t.Fatalf("Evaluate() state = %q, want %q", dec.State, StateRateLimited)
	}
	if got := store.recs[7].CommandCount; got != 2 {
		t.Fatalf("record count = %d, want 2", got)
	}
	// The interaction timestamp belongs to the last allowed event.
	if got := store.recs[7].LastInteractionAt; !got.Equal(t0) {
		t.Fatalf("last_interaction_at = %v, want %v", got, t0)
	}
}

func TestEvaluateFailsClosedOnStoreErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	store := newMemStore()
	store.getErr = errors.New("disk gone")
	g := New(DefaultConfig(), store, nil, nil)
	if _, err := g.Evaluate(ctx, 7, 2*time.Second, now); err == nil {
		t.Fatalf("Evaluate() with failing Get expected error")
	}

	store = newMemStore()
	store.putErr = errors.New("disk gone")
	g = New(DefaultConfig(), store, nil, nil)
	if _, err := g.Evaluate(ctx, 7, 2*time.Second, now); err == nil {
		t.Fatalf("Evaluate() with failing Put expected error")
	}
}

func TestCeilSeconds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		d    time.Duration
		want int
	}{
		{0, 0},
		{-time.Second, 0},
		{time.Millisecond, 1},
		{29*time.Second + 500*time.Millisecond, 30},
		{30 * time.Second, 30},
	}
	for _, c := range cases {
		if got := ceilSeconds(c.d); got != c.want {
			t.Fatalf("ceilSeconds(%v) = %d, want %d", c.d, got, c.want)
		}
	}
}
