package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMediaExt(t *testing.T) {
	cases := []struct {
		name string
		ext  string
		ok   bool
	}{
		{"cat.JPG", ".jpg", true},
		{"clip.mp4", ".mp4", true},
		{"anim.webp", ".webp", true},
		{"script.sh", "", false},
		{"noext", "", false},
	}
	for _, c := range cases {
		ext, err := MediaExt(c.name)
		if c.ok && (err != nil || ext != c.ext) {
			t.Fatalf("MediaExt(%q) = %q, %v", c.name, ext, err)
		}
		if !c.ok && !errors.Is(err, ErrUnsupportedMedia) {
			t.Fatalf("MediaExt(%q) expected ErrUnsupportedMedia, got %v", c.name, err)
		}
	}
}

func TestLocalSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("new local: %v", err)
	}

	stem := NewStem("post", 3)
	if !strings.HasPrefix(stem, "post-3-") {
		t.Fatalf("unexpected stem %q", stem)
	}

	p, err := store.Save(context.Background(), []byte("GIF89a"), stem, ".gif")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if p != "/uploads/"+stem+".gif" {
		t.Fatalf("unexpected path %q", p)
	}

	data, err := os.ReadFile(filepath.Join(dir, stem+".gif"))
	if err != nil || string(data) != "GIF89a" {
		t.Fatalf("file not written correctly: %q, %v", data, err)
	}

	if err := store.Delete(context.Background(), p); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, stem+".gif")); !os.IsNotExist(err) {
		t.Fatalf("file still present after delete")
	}
	// Borrar dos veces no es un error
	if err := store.Delete(context.Background(), p); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestLocalDeleteStaysInsideDir(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(root, "keep.txt")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := NewLocal(filepath.Join(root, "uploads"))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(context.Background(), "/uploads/../keep.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Fatalf("file outside the upload dir was touched: %v", err)
	}
}

func TestPublicIDFromURL(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1712345/memenest/media/post-1-abc.png": "memenest/media/post-1-abc",
		"https://res.cloudinary.com/demo/video/upload/memenest/clip.mp4":                      "memenest/clip",
		"/uploads/post-1.png": "",
	}
	for in, want := range cases {
		if got := publicIDFromURL(in); got != want {
			t.Fatalf("publicIDFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}
