package conversation

import (
	"context"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	_, found, err := store.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Fatalf("Get() found = true, want false")
	}

	in := State{
		UserID:    7,
		Step:      string(StepAwaitingIssueDetails),
		Artifacts: []string{"file:///issue.jpg"},
		TicketID:  424242,
	}
	if err := store.Put(ctx, in); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	out, found, err := store.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatalf("Get() found = false, want true")
	}
	if out.Step != in.Step || out.TicketID != in.TicketID {
		t.Fatalf("Get() = %+v, want %+v", out, in)
	}
	if len(out.Artifacts) != 1 || out.Artifacts[0] != in.Artifacts[0] {
		t.Fatalf("Get() artifacts = %v, want %v", out.Artifacts, in.Artifacts)
	}
}

func TestFileStoreUsersAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	if err := store.Put(ctx, State{UserID: 1, Step: string(StepFeedback)}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put(ctx, State{UserID: 2, Step: string(StepAwaitingTonHash)}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	out, _, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.Step != string(StepFeedback) {
		t.Fatalf("Get(1) step = %q, want %q", out.Step, StepFeedback)
	}
}
