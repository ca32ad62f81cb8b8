package abuseguard

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/quailyquaily/supportbot/internal/fsstore"
)

// FileStore keeps one JSON record per user under root. A flock around each
// write keeps concurrent processes from clobbering each other's updates.
type FileStore struct {
	root string
	mu   sync.Mutex
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: strings.TrimSpace(root)}
}

func (s *FileStore) Get(ctx context.Context, userID int64) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec Record
	found, err := fsstore.ReadJSON(s.recordPath(userID), &rec)
	if err != nil {
		return Record{}, false, err
	}
	return rec, found, nil
}

func (s *FileStore) Put(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	lockPath, err := fsstore.BuildLockPath(s.locksDir(), fmt.Sprintf("ratelimit.%d", record.UserID))
	if err != nil {
		return err
	}
	return fsstore.WithLock(ctx, lockPath, func() error {
		return fsstore.WriteJSONAtomic(s.recordPath(record.UserID), record, fsstore.FileOptions{})
	})
}

func (s *FileStore) recordPath(userID int64) string {
	return filepath.Join(s.root, fmt.Sprintf("%d.json", userID))
}

func (s *FileStore) locksDir() string {
	return filepath.Join(s.root, ".fslocks")
}
