package abuseguard

import (
	"context"
	"testing"
	"time"
)

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	_, found, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Fatalf("Get() found = true, want false")
	}

	in := Record{
		UserID:            42,
		LastInteractionAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		CommandCount:      3,
	}
	if err := store.Put(ctx, in); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	out, found, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatalf("Get() found = false, want true")
	}
	if out.UserID != in.UserID || out.CommandCount != in.CommandCount {
		t.Fatalf("Get() = %+v, want %+v", out, in)
	}
	if !out.LastInteractionAt.Equal(in.LastInteractionAt) {
		t.Fatalf("Get() last_interaction_at = %v, want %v", out.LastInteractionAt, in.LastInteractionAt)
	}
	if !out.BlockedUntil.IsZero() {
		t.Fatalf("Get() blocked_until = %v, want zero", out.BlockedUntil)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	if err := store.Put(ctx, Record{UserID: 42, CommandCount: 1}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put(ctx, Record{UserID: 42, CommandCount: 5}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	out, _, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.CommandCount != 5 {
		t.Fatalf("Get() count = %d, want 5", out.CommandCount)
	}
}

func TestFileStoreCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewFileStore(t.TempDir())
	if _, _, err := store.Get(ctx, 42); err == nil {
		t.Fatalf("Get() with canceled context expected error")
	}
	if err := store.Put(ctx, Record{UserID: 42}); err == nil {
		t.Fatalf("Put() with canceled context expected error")
	}
}
