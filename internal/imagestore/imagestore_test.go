package imagestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func TestNewRejectsEmptyBaseDir(t *testing.T) {
	t.Parallel()

	_, err := New("", nil)
	assert.Error(t, err)
}

func TestSaveJPEG(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	data := []byte("jpeg bytes")
	name, size, err := s.SaveJPEG(data)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)
	assert.NotContains(t, name, string(os.PathSeparator))

	path, err := s.Resolve(name)
	require.NoError(t, err)
	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestSaveJPEGRejectsEmptyBuffer(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	_, _, err := s.SaveJPEG(nil)
	assert.Error(t, err)
}

func TestSaveJPEGUniqueNames(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	// Same payload, same second: the random suffix must keep names distinct.
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		name, _, err := s.SaveJPEG([]byte("frame"))
		require.NoError(t, err)
		assert.False(t, seen[name], "duplicate file name %s", name)
		seen[name] = true
	}
}

func TestSaveJPEGUnwritableDir(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("directory write permissions are not enforced for root")
	}

	dir := t.TempDir()
	s, err := New(dir, nil)
	require.NoError(t, err)

	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	_, _, err = s.SaveJPEG([]byte("frame"))
	assert.Error(t, err)
}

func TestResolveRejectsTraversal(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"parent traversal", "../etc/passwd"},
		{"embedded traversal", "a/../../etc/passwd"},
		{"forward slash", "subdir/file.jpg"},
		{"backslash", `subdir\file.jpg`},
		{"bare dots", ".."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := s.Resolve(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestResolveValidName(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	path, err := s.Resolve("capture_20250101T120000_abcd1234.jpg")
	require.NoError(t, err)
	assert.Equal(t, s.BaseDir(), filepath.Dir(path))
}

func TestRemoveMissingFileIsNotAnError(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	assert.NoError(t, s.Remove("capture_20250101T120000_abcd1234.jpg"))
}

func TestRemove(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	name, _, err := s.SaveJPEG([]byte("frame"))
	require.NoError(t, err)

	require.NoError(t, s.Remove(name))

	_, err = s.Stat(name)
	assert.True(t, os.IsNotExist(err))
}
