package conversation

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/quailyquaily/supportbot/internal/fsstore"
)

// FileStore keeps one JSON state record per user under root.
type FileStore struct {
	root string
	mu   sync.Mutex
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: strings.TrimSpace(root)}
}

func (s *FileStore) Get(ctx context.Context, userID int64) (State, bool, error) {
	if err := ctx.Err(); err != nil {
		return State{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var state State
	found, err := fsstore.ReadJSON(s.statePath(userID), &state)
	if err != nil {
		return State{}, false, err
	}
	return state, found, nil
}

func (s *FileStore) Put(ctx context.Context, state State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	lockPath, err := fsstore.BuildLockPath(filepath.Join(s.root, ".fslocks"), fmt.Sprintf("conversation.%d", state.UserID))
	if err != nil {
		return err
	}
	return fsstore.WithLock(ctx, lockPath, func() error {
		return fsstore.WriteJSONAtomic(s.statePath(state.UserID), state, fsstore.FileOptions{})
	})
}

func (s *FileStore) statePath(userID int64) string {
	return filepath.Join(s.root, fmt.Sprintf("%d.json", userID))
}
