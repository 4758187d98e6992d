package blobstore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/buildshare/blueprint-backend/internal/apperr"
	"github.com/buildshare/blueprint-backend/internal/logger"
)

func newTestStore(t *testing.T) (Store, string) {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	root := t.TempDir()
	s, err := New(log, Config{Root: root, Depth: 4})
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	return s, root
}

func TestWriteReadRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	content := []byte("resistor: 4.7k\nled: red\n")
	if err := s.Write(ctx, "ab12", s.VersionToken(1), content); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := s.Read(ctx, "ab12", s.VersionToken(1))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("round trip mismatch: want=%q got=%q", content, got)
	}
}

func TestWriteOverwritesAtomically(t *testing.T) {
	s, root := newTestStore(t)
	ctx := context.Background()

	if err := s.Write(ctx, "xy", s.VersionToken(1), []byte("old")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := s.Write(ctx, "xy", s.VersionToken(1), []byte("new")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	got, err := s.Read(ctx, "xy", s.VersionToken(1))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "new" {
		t.Fatalf("want=%q got=%q", "new", got)
	}

	// No temp files may survive a completed write.
	leaf := filepath.Join(root, "x", "y", "_", "_")
	entries, err := os.ReadDir(leaf)
	if err != nil {
		t.Fatalf("read leaf dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "1" {
		t.Fatalf("unexpected leaf contents: %v", entries)
	}
}

func TestShardPathShape(t *testing.T) {
	s, root := newTestStore(t)
	ctx := context.Background()

	if err := s.Write(ctx, "ab1", s.VersionToken(2), []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	// One directory per identifier character, filler to constant depth.
	want := filepath.Join(root, "a", "b", "1", "_", "2")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected version file at %s: %v", want, err)
	}
}

func TestLegacyDottedTokenAccepted(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Write(ctx, "old1", "1.2", []byte("legacy")); err != nil {
		t.Fatalf("write dotted token: %v", err)
	}
	got, err := s.Read(ctx, "old1", "1.2")
	if err != nil {
		t.Fatalf("read dotted token: %v", err)
	}
	if string(got) != "legacy" {
		t.Fatalf("want=%q got=%q", "legacy", got)
	}
}

func TestMalformedTokenRejected(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, token := range []string{"", "v1", "1.2.3", "../1", "1x"} {
		if err := s.Write(ctx, "ab", token, []byte("x")); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("token %q: want ErrValidation, got %v", token, err)
		}
	}
}

func TestMalformedFileIDRejected(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, fileID := range []string{"", "../x", "a/b", "a.b", "toolongid"} {
		if err := s.Write(ctx, fileID, "1", []byte("x")); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("file id %q: want ErrValidation, got %v", fileID, err)
		}
	}
}

func TestReadMissingVersion(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.Read(context.Background(), "ab", "7"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDeleteVersionIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Write(ctx, "ab", "1", []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.DeleteVersion(ctx, "ab", "1"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := s.DeleteVersion(ctx, "ab", "1"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
}

func TestDeleteAllPrunesEmptyParents(t *testing.T) {
	s, root := newTestStore(t)
	ctx := context.Background()

	if err := s.Write(ctx, "ab", "1", []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Write(ctx, "ab", "2", []byte("y")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.DeleteAll(ctx, "ab"); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected pruned root, found %v", entries)
	}
	if s.Exists("ab") {
		t.Fatal("Exists should be false after DeleteAll")
	}
}

func TestDeleteAllKeepsSharedParents(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	// "ab" and "ac" share the "a" directory.
	if err := s.Write(ctx, "ab", "1", []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Write(ctx, "ac", "1", []byte("y")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.DeleteAll(ctx, "ab"); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if s.Exists("ab") {
		t.Fatal("deleted leaf still exists")
	}
	if !s.Exists("ac") {
		t.Fatal("sibling leaf was pruned")
	}
	if _, err := s.Read(ctx, "ac", "1"); err != nil {
		t.Fatalf("sibling content lost: %v", err)
	}
}

func TestExistsSeesRemnants(t *testing.T) {
	s, root := newTestStore(t)

	// A leaf directory left behind by a failed deletion, no ledger row.
	leaf := filepath.Join(root, "z", "z", "_", "_")
	if err := os.MkdirAll(leaf, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if !s.Exists("zz") {
		t.Fatal("Exists should report remnant leaf directories")
	}
}
