package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFileSystem_VisibleAfterClose(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.MkdirAll("/out/maps", 0o755))
	assert.True(t, mfs.Exists("/out"))

	w, err := mfs.Create("/out/maps/a.png")
	require.NoError(t, err)
	_, err = w.Write([]byte("abc"))
	require.NoError(t, err)
	assert.False(t, mfs.Exists("/out/maps/a.png"))

	require.NoError(t, w.Close())
	data, err := mfs.ReadFile("/out/maps/../maps/a.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), data)

	assert.ErrorIs(t, w.Close(), fs.ErrClosed)
	_, err = w.Write([]byte("x"))
	assert.ErrorIs(t, err, fs.ErrClosed)
}

func TestMemoryFileSystem_Errors(t *testing.T) {
	mfs := NewMemoryFileSystem()

	_, err := mfs.Create("/missing/a.png")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = mfs.ReadFile("/nope.png")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	w, err := mfs.Create("/file")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.ErrorIs(t, mfs.MkdirAll("/file/sub", 0o755), fs.ErrExist)
}

func TestMemoryFileSystem_ReadReturnsCopy(t *testing.T) {
	mfs := NewMemoryFileSystem()
	w, err := mfs.Create("grid.png")
	require.NoError(t, err)
	_, _ = w.Write([]byte{1, 2, 3})
	require.NoError(t, w.Close())

	data, err := mfs.ReadFile("grid.png")
	require.NoError(t, err)
	data[0] = 9

	again, err := mfs.ReadFile("grid.png")
	require.NoError(t, err)
	assert.Equal(t, byte(1), again[0])
}

func TestOSFileSystem_RoundTrip(t *testing.T) {
	var osfs OSFileSystem
	dir := filepath.Join(t.TempDir(), "nested")
	require.NoError(t, osfs.MkdirAll(dir, 0o755))

	path := filepath.Join(dir, "grid.png")
	w, err := osfs.Create(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.True(t, osfs.Exists(path))
	data, err := osfs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}
