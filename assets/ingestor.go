// Package assets ingests opaque binary uploads and hands back stable
// reference strings. Callers never inspect the bytes again; references are
// what the conversation workflows persist.
package assets

import "context"

type Ingestor interface {
	Ingest(ctx context.Context, data []byte, contentType string) (string, error)
}
