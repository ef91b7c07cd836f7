package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveOpenDelete(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	key, size, mimeType, err := s.Save(ctx, "notes.txt", strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != 11 {
		t.Fatalf("expected size 11, got %d", size)
	}
	if !strings.HasPrefix(mimeType, "text/plain") {
		t.Fatalf("unexpected mime type %q", mimeType)
	}
	if !strings.HasSuffix(key, "_notes.txt") {
		t.Fatalf("unexpected key %q", key)
	}

	rc, err := s.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello world" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Open(ctx, key); err == nil {
		t.Fatalf("expected open to fail after delete")
	}
	// Deleting again is not an error.
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestSaveRejectsBadFileName(t *testing.T) {
	s := New(t.TempDir())
	if _, _, _, err := s.Save(context.Background(), "../../etc/passwd", strings.NewReader("x")); err == nil {
		t.Fatalf("expected sanitize error")
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Open(context.Background(), "../secret"); err == nil {
		t.Fatalf("expected traversal rejection")
	}
	if _, err := s.Open(context.Background(), "/abs/path"); err == nil {
		t.Fatalf("expected absolute key rejection")
	}
}

func TestSweepRemovesOldFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	ctx := context.Background()

	oldKey, _, _, err := s.Save(ctx, "old.txt", strings.NewReader("stale"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, oldKey), past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	freshKey, _, _, err := s.Save(ctx, "fresh.txt", strings.NewReader("recent"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	removed, err := s.Sweep(ctx, time.Hour)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, err := s.Open(ctx, oldKey); err == nil {
		t.Fatalf("old file should be gone")
	}
	rc, err := s.Open(ctx, freshKey)
	if err != nil {
		t.Fatalf("fresh file should survive: %v", err)
	}
	rc.Close()
}

func TestSweepMissingDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "never-created"))
	removed, err := s.Sweep(context.Background(), time.Hour)
	if err != nil || removed != 0 {
		t.Fatalf("expected no-op sweep, got removed=%d err=%v", removed, err)
	}
}
