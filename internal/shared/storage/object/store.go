package object

import (
	"context"
	"io"
	"time"
)

// ObjectStore defines the contract for saving and retrieving uploaded documents.
// Stored objects are transient by design: callers delete them as soon as text
// extraction finishes, and Sweep removes anything that slipped through.
type ObjectStore interface {
	Save(ctx context.Context, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
	Sweep(ctx context.Context, maxAge time.Duration) (removed int, err error)
}
