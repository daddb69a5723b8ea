package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local keeps media on disk under Dir; paths are served by the static /uploads route.
type Local struct {
	Dir       string
	URLPrefix string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Local{Dir: dir, URLPrefix: "/uploads/"}, nil
}

func (l *Local) Save(ctx context.Context, data []byte, stem, ext string) (string, error) {
	name := filepath.Base(stem + ext)
	target := filepath.Join(l.Dir, name)

	// Se escribe a un temporal y se renombra para no dejar archivos a medias
	tmp, err := os.CreateTemp(l.Dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write media: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close media: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move media into place: %w", err)
	}

	return l.URLPrefix + name, nil
}

func (l *Local) Delete(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(path, l.URLPrefix))
	err := os.Remove(filepath.Join(l.Dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	return nil
}
