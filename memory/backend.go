package memory

import (
	"context"
)

// Backend persists whole named documents. Save replaces the previous
// document atomically; Load reports false when the document does not exist.
type Backend interface {
	Load(ctx context.Context, name string, v any) (bool, error)
	Save(ctx context.Context, name string, v any) error
	Close() error
}
