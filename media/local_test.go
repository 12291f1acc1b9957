package media

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laughschool/models"
)

// pngBytes is a minimal buffer starting with the PNG magic number, enough
// for MIME sniffing.
func pngBytes() []byte {
	return append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
}

func TestStoreAcceptsPNG(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	stored, err := s.Store(context.Background(), bytes.NewReader(pngBytes()))
	require.NoError(t, err)

	assert.Equal(t, models.TypeImage, stored.Kind)
	assert.Equal(t, "image/png", stored.ContentType)
	assert.True(t, strings.HasPrefix(stored.URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(stored.Ref, ".png"))

	// The full content, including the sniffed header, lands on disk.
	raw, err := os.ReadFile(filepath.Join(dir, stored.Ref))
	require.NoError(t, err)
	assert.Equal(t, pngBytes(), raw)
}

func TestStoreRejectsUnsupportedType(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Store(context.Background(), strings.NewReader("just some text, not media"))
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads leave no file behind")
}

func TestReleaseRemovesFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	stored, err := s.Store(context.Background(), bytes.NewReader(pngBytes()))
	require.NoError(t, err)

	require.NoError(t, s.Release(context.Background(), stored.Ref))
	_, err = os.Stat(filepath.Join(dir, stored.Ref))
	assert.True(t, os.IsNotExist(err))

	// Releasing twice, or releasing nothing, is fine.
	require.NoError(t, s.Release(context.Background(), stored.Ref))
	require.NoError(t, s.Release(context.Background(), ""))
}

func TestReleaseIgnoresPathTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	outside := filepath.Join(dir, "precious.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))

	require.NoError(t, s.Release(context.Background(), "../precious.txt"))
	_, err = os.Stat(outside)
	assert.NoError(t, err, "release must never escape the uploads dir")
}
