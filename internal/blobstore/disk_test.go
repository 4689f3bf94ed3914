package blobstore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ebalodis/shellvault/internal/common"
	"github.com/stretchr/testify/require"
)

func newDiskStore(t *testing.T) *DiskStore {
	t.Helper()
	s, err := NewDiskStore(t.TempDir(), "/uploads/specimens")
	require.NoError(t, err)
	return s
}

func TestDiskStore_SaveAndLayout(t *testing.T) {
	s := newDiskStore(t)
	ctx := context.Background()

	ref, err := s.Save(ctx, "owner-1", []byte("img-bytes"), "Shell Photo.JPG")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(ref, "/uploads/specimens/owner-1/"), "ref %q", ref)
	require.True(t, strings.HasSuffix(ref, ".jpg"), "extension must be preserved lowercased, got %q", ref)

	rel := strings.TrimPrefix(ref, "/uploads/specimens/")
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	require.Equal(t, []byte("img-bytes"), data)
}

func TestDiskStore_SaveUniqueNames(t *testing.T) {
	s := newDiskStore(t)
	ctx := context.Background()

	ref1, err := s.Save(ctx, "o", []byte("a"), "x.png")
	require.NoError(t, err)
	ref2, err := s.Save(ctx, "o", []byte("b"), "x.png")
	require.NoError(t, err)
	require.NotEqual(t, ref1, ref2)
}

func TestDiskStore_SaveRejectsExtension(t *testing.T) {
	s := newDiskStore(t)

	tests := []string{"malware.exe", "archive.tar.gz", "noext", "image.png.sh"}
	for _, name := range tests {
		_, err := s.Save(context.Background(), "o", []byte("x"), name)
		require.ErrorIs(t, err, common.ErrInvalidFileType, "file %q", name)
	}
}

func TestDiskStore_SaveRejectsOversized(t *testing.T) {
	s := newDiskStore(t)

	big := bytes.Repeat([]byte{0xAB}, MaxFileSize+1)
	_, err := s.Save(context.Background(), "o", big, "big.jpg")
	require.ErrorIs(t, err, common.ErrFileTooLarge)

	// Exactly at the cap is fine.
	_, err = s.Save(context.Background(), "o", bytes.Repeat([]byte{0x01}, MaxFileSize), "ok.jpg")
	require.NoError(t, err)
}

func TestDiskStore_DeleteAll(t *testing.T) {
	s := newDiskStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, "owner-2", []byte("a"), "a.jpg")
	require.NoError(t, err)
	_, err = s.Save(ctx, "owner-2", []byte("b"), "b.png")
	require.NoError(t, err)

	require.NoError(t, s.DeleteAll(ctx, "owner-2"))

	_, err = os.Stat(filepath.Join(s.root, "owner-2"))
	require.True(t, os.IsNotExist(err), "namespace dir must be gone")

	// Idempotent on an absent namespace.
	require.NoError(t, s.DeleteAll(ctx, "owner-2"))
}

func TestDiskStore_DeleteOne(t *testing.T) {
	s := newDiskStore(t)
	ctx := context.Background()

	ref, err := s.Save(ctx, "owner-3", []byte("a"), "a.gif")
	require.NoError(t, err)

	removed, err := s.DeleteOne(ctx, ref)
	require.NoError(t, err)
	require.True(t, removed)

	// Second delete is a no-op.
	removed, err = s.DeleteOne(ctx, ref)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestDiskStore_DeleteOneRejectsForeignRefs(t *testing.T) {
	s := newDiskStore(t)
	ctx := context.Background()

	outside := filepath.Join(filepath.Dir(s.root), "victim.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o660))

	tests := []string{
		"/etc/passwd",
		"/uploads/specimens/../" + filepath.Base(outside),
		"/uploads/specimens/o/../../" + filepath.Base(outside),
		"relative/path.jpg",
	}
	for _, ref := range tests {
		removed, err := s.DeleteOne(ctx, ref)
		require.NoError(t, err, "ref %q", ref)
		require.False(t, removed, "ref %q must be rejected", ref)
	}

	_, err := os.Stat(outside)
	require.NoError(t, err, "file outside the root must survive")
}
