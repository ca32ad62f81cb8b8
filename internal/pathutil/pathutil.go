package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

const defaultStateDir = "~/.supportbot"

// ExpandHomePath rewrites a leading "~" to the current user's home directory.
// Unexpandable paths are returned unchanged; callers treat them as relative.
func ExpandHomePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func ResolveStateDir(configured string) string {
	configured = strings.TrimSpace(configured)
	if configured == "" {
		configured = defaultStateDir
	}
	return filepath.Clean(ExpandHomePath(configured))
}

func ResolveStateChildDir(stateDir, configuredName, fallbackName string) string {
	name := strings.TrimSpace(configuredName)
	if name == "" {
		name = fallbackName
	}
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(ResolveStateDir(stateDir), name)
}

func ResolveStateFile(stateDir, filename string) string {
	return filepath.Join(ResolveStateDir(stateDir), filename)
}
