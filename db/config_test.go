package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveSQLiteDSNExplicitWins(t *testing.T) {
	t.Parallel()

	got, err := ResolveSQLiteDSN("file:custom.sqlite?cache=shared", t.TempDir())
	if err != nil {
		t.Fatalf("ResolveSQLiteDSN() error = %v", err)
	}
	if got != "file:custom.sqlite?cache=shared" {
		t.Fatalf("ResolveSQLiteDSN() = %q, want explicit dsn", got)
	}
}

func TestResolveSQLiteDSNPrefersExistingStateDB(t *testing.T) {
	t.Parallel()

	stateDir := t.TempDir()
	stateDB := filepath.Join(stateDir, "supportbot.sqlite")
	if err := os.WriteFile(stateDB, nil, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := ResolveSQLiteDSN("", stateDir)
	if err != nil {
		t.Fatalf("ResolveSQLiteDSN() error = %v", err)
	}
	if got != stateDB {
		t.Fatalf("ResolveSQLiteDSN() = %q, want %q", got, stateDB)
	}
}

func TestResolveSQLiteDSNCreatesStateDir(t *testing.T) {
	t.Parallel()

	stateDir := filepath.Join(t.TempDir(), "nested", "state")
	got, err := ResolveSQLiteDSN("", stateDir)
	if err != nil {
		t.Fatalf("ResolveSQLiteDSN() error = %v", err)
	}
	if want := filepath.Join(stateDir, "supportbot.sqlite"); got != want {
		t.Fatalf("ResolveSQLiteDSN() = %q, want %q", got, want)
	}
	if _, err := os.Stat(stateDir); err != nil {
		t.Fatalf("state dir was not created: %v", err)
	}
}
