package fsstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestBuildLockPath(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), ".fslocks")
	got, err := BuildLockPath(root, "ratelimit.42")
	if err != nil {
		t.Fatalf("BuildLockPath() error = %v", err)
	}
	want := filepath.Join(root, "ratelimit.42.lck")
	if got != want {
		t.Fatalf("BuildLockPath() = %q, want %q", got, want)
	}
}

func TestBuildLockPathInvalidKey(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), ".fslocks")
	invalid := []string{
		"",
		"Ratelimit.42",
		"ratelimit/42",
		".ratelimit.42",
		"ratelimit.42.",
		"ratelimit 42",
	}
	for _, key := range invalid {
		key := key
		t.Run(key, func(t *testing.T) {
			t.Parallel()
			_, err := BuildLockPath(root, key)
			if err == nil {
				t.Fatalf("BuildLockPath(%q) expected error", key)
			}
			if !errors.Is(err, ErrInvalidPath) {
				t.Fatalf("BuildLockPath(%q) error = %v, want ErrInvalidPath", key, err)
			}
		})
	}
}

func TestReadWriteJSONAtomic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "record.json")
	type payload struct {
		Name string `json:"name"`
	}
	in := payload{Name: "alpha"}
	if err := WriteJSONAtomic(path, in, FileOptions{}); err != nil {
		t.Fatalf("WriteJSONAtomic() error = %v", err)
	}
	var out payload
	ok, err := ReadJSON(path, &out)
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if !ok {
		t.Fatalf("ReadJSON() exists = false, want true")
	}
	if out.Name != in.Name {
		t.Fatalf("ReadJSON() value = %+v, want %+v", out, in)
	}
}

func TestReadJSONMissingFile(t *testing.T) {
	t.Parallel()

	var out struct{}
	ok, err := ReadJSON(filepath.Join(t.TempDir(), "missing.json"), &out)
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if ok {
		t.Fatalf("ReadJSON() exists = true, want false")
	}
}

func TestReadWriteTextAtomic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.md")
	if err := WriteTextAtomic(path, "hello", FileOptions{}); err != nil {
		t.Fatalf("WriteTextAtomic() error = %v", err)
	}
	got, ok, err := ReadText(path)
	if err != nil {
		t.Fatalf("ReadText() error = %v", err)
	}
	if !ok {
		t.Fatalf("ReadText() exists = false, want true")
	}
	if got != "hello" {
		t.Fatalf("ReadText() = %q, want %q", got, "hello")
	}
}

func TestWithLockRunsFn(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), ".fslocks", "state.main.lck")
	ran := false
	err := WithLock(context.Background(), lockPath, func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("WithLock() error = %v", err)
	}
	if !ran {
		t.Fatalf("WithLock() did not run fn")
	}
}

func TestWithLockPropagatesError(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), ".fslocks", "state.main.lck")
	wantErr := errors.New("boom")
	err := WithLock(context.Background(), lockPath, func() error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("WithLock() error = %v, want %v", err, wantErr)
	}
}

func TestWithLockSerializesWriters(t *testing.T) {
	t.Parallel()

	lockPath := filepath.Join(t.TempDir(), ".fslocks", "state.main.lck")
	var inCritical atomic.Int32
	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			done <- WithLock(context.Background(), lockPath, func() error {
				if n := inCritical.Add(1); n != 1 {
					return fmt.Errorf("critical section entered %d times concurrently", n)
				}
				time.Sleep(5 * time.Millisecond)
				inCritical.Add(-1)
				return nil
			})
		}()
	}
	for i := 0; i < 4; i++ {
		if err := <-done; err != nil {
			t.Fatalf("WithLock() error = %v", err)
		}
	}
}

func TestJSONLWriterAppends(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audit.jsonl")
	w, err := NewJSONLWriter(path, JSONLOptions{FlushEachWrite: true})
	if err != nil {
		t.Fatalf("NewJSONLWriter() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	for i := 0; i < 3; i++ {
		if err := w.AppendJSON(map[string]int{"n": i}); err != nil {
			t.Fatalf("AppendJSON() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	content, ok, err := ReadText(path)
	if err != nil || !ok {
		t.Fatalf("ReadText() = %v, %v", ok, err)
	}
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 3 {
		t.Fatalf("jsonl lines = %d, want 3", len(lines))
	}
}

func TestJSONLWriterRotates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "audit.jsonl")
	w, err := NewJSONLWriter(path, JSONLOptions{FlushEachWrite: true, RotateMaxBytes: 32})
	if err != nil {
		t.Fatalf("NewJSONLWriter() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	for i := 0; i < 10; i++ {
		if err := w.AppendJSON(map[string]string{"payload": "0123456789"}); err != nil {
			t.Fatalf("AppendJSON() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	matches, err := filepath.Glob(path + ".*")
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("expected rotated files next to %s", path)
	}
}
