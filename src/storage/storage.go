// Package storage writes uploaded media and hands back the path stored on posts and comments.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedMedia = errors.New("unsupported media type")

// Storage accepts a blob plus a filename stem and returns a stable path or URL for it.
type Storage interface {
	Save(ctx context.Context, data []byte, stem, ext string) (string, error)
	Delete(ctx context.Context, path string) error
}

var (
	imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
	videoExts = map[string]bool{".mp4": true, ".webm": true, ".mov": true}
)

// MediaExt returns the lowercased extension of filename if it is an accepted image or video.
func MediaExt(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExts[ext] && !videoExts[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMedia, ext)
	}
	return ext, nil
}

func IsVideo(ext string) bool {
	return videoExts[strings.ToLower(ext)]
}

// NewStem builds a collision free file stem such as "post-12-<uuid>".
func NewStem(kind string, id uint) string {
	return fmt.Sprintf("%s-%d-%s", kind, id, uuid.NewString())
}
