package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DiskStorage stores attachment files in a flat directory, one file
// per attachment under a generated name. The original filename only
// lives in the database.
type DiskStorage struct {
	dir string
}

func NewDiskStorage(dir string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStorage{dir: dir}, nil
}

func (d *DiskStorage) Save(ctx context.Context, name string, file io.Reader) (string, error) {
	stored := uuid.NewString() + filepath.Ext(name)
	target := filepath.Join(d.dir, stored)

	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create attachment file: %w", err)
	}

	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("write attachment file: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("close attachment file: %w", err)
	}

	return stored, nil
}

func (d *DiskStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(d.dir, filepath.Base(path)))
}

func (d *DiskStorage) Remove(ctx context.Context, path string) error {
	err := os.Remove(filepath.Join(d.dir, filepath.Base(path)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (d *DiskStorage) ListOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			paths = append(paths, entry.Name())
		}
	}
	return paths, nil
}
