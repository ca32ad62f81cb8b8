package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/quailyquaily/supportbot/internal/fsstore"
)

// FileIngestor stores uploads under root, named by content hash so repeated
// uploads of the same bytes dedupe to one file.
type FileIngestor struct {
	root string
}

func NewFileIngestor(root string) *FileIngestor {
	return &FileIngestor{root: strings.TrimSpace(root)}
}

func (f *FileIngestor) Ingest(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("assets: empty payload")
	}
	sum := sha256.Sum256(data)
	name := hex.EncodeToString(sum[:]) + extensionFor(contentType)
	path := filepath.Join(f.root, name)
	if err := fsstore.WriteTextAtomic(path, string(data), fsstore.FileOptions{}); err != nil {
		return "", fmt.Errorf("assets: write %s: %w", path, err)
	}
	return "file://" + path, nil
}

func extensionFor(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
