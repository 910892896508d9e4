package storage

import (
	"context"
	"io"
	"time"
)

// Storage persists attachment files. Save returns the opaque path the
// file is retrievable under; the database keeps that path alongside
// the original filename.
type Storage interface {
	Save(ctx context.Context, name string, file io.Reader) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, path string) error

	// ListOlderThan returns the stored paths whose files were written
	// before the cutoff, for orphan sweeping.
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
}
