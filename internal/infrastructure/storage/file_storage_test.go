package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStorage(t *testing.T) (*LocalFileStorage, string) {
	t.Helper()
	dir := t.TempDir()
	return NewLocalFileStorage(dir, zap.NewNop()).(*LocalFileStorage), dir
}

func TestSaveAndRead(t *testing.T) {
	s, dir := newTestStorage(t)
	ctx := context.Background()

	content := []byte("<Transmission/>")
	require.NoError(t, s.Save(ctx, "25123456001.xml", content))

	got, err := s.Read(ctx, "25123456001.xml")
	require.NoError(t, err)
	assert.Equal(t, content, got)

	onDisk, err := os.ReadFile(filepath.Join(dir, "25123456001.xml"))
	require.NoError(t, err)
	assert.Equal(t, content, onDisk)
}

func TestSaveCreatesParentDirectories(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, filepath.Join("2025", "25123456001.xml"), []byte("x")))
	assert.True(t, s.Exists(ctx, filepath.Join("2025", "25123456001.xml")))
}

func TestExists(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx := context.Background()

	assert.False(t, s.Exists(ctx, "missing.xml"))
	require.NoError(t, s.Save(ctx, "present.xml", []byte("x")))
	assert.True(t, s.Exists(ctx, "present.xml"))
}

func TestDelete(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "doomed.xml", []byte("x")))
	require.NoError(t, s.Delete(ctx, "doomed.xml"))
	assert.False(t, s.Exists(ctx, "doomed.xml"))

	// deleting an absent file is a no-op
	assert.NoError(t, s.Delete(ctx, "doomed.xml"))
}

func TestPathTraversalRejected(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx := context.Background()

	err := s.Save(ctx, filepath.Join("..", "escape.xml"), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes storage root")

	_, err = s.Read(ctx, filepath.Join("..", "..", "etc", "passwd"))
	assert.Error(t, err)
}
