package storage

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/smartscreen/internal/capability"
)

var _ capability.Store = (*FileStore)(nil)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	s := NewFileStore(filepath.Join(t.TempDir(), "nested", "settings.json"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, s.Open())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestFileStore_PutGet(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Put("settings", "locale", "en-GB"))
	require.NoError(t, s.Put("settings", "wakeword", "alexa"))
	require.NoError(t, s.Put("alerts", "locale", "other"))

	v, ok, err := s.Get("settings", "locale")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "en-GB", v)

	_, ok, err = s.Get("settings", "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.Get("nope", "locale")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "misc.json")

	s := NewFileStore(path, nil)
	require.NoError(t, s.Open())
	require.NoError(t, s.Put("a", "k1", "v1"))
	require.NoError(t, s.Put("a", "k2", "v2"))
	require.NoError(t, s.Put("b", "k1", "x"))
	require.NoError(t, s.Delete("a", "k2"))
	require.NoError(t, s.Clear("b"))
	require.NoError(t, s.Close())

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	reopened := NewFileStore(path, nil)
	require.NoError(t, reopened.Open())
	defer reopened.Close()

	v, ok, err := reopened.Get("a", "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	_, ok, _ = reopened.Get("a", "k2")
	assert.False(t, ok)
	_, ok, _ = reopened.Get("b", "k1")
	assert.False(t, ok)
}

func TestFileStore_DeleteAndClearMissingAreNoops(t *testing.T) {
	s := newStore(t)

	assert.NoError(t, s.Delete("none", "k"))
	assert.NoError(t, s.Clear("none"))

	require.NoError(t, s.Put("ns", "k", "v"))
	assert.NoError(t, s.Delete("ns", "other"))
	_, err := os.Stat(s.Path())
	assert.NoError(t, err)
}

func TestFileStore_ClosedOperationsFail(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "s.json"), nil)

	assert.ErrorIs(t, s.Put("ns", "k", "v"), ErrNotOpen)
	_, _, err := s.Get("ns", "k")
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, s.Delete("ns", "k"), ErrNotOpen)
	assert.ErrorIs(t, s.Clear("ns"), ErrNotOpen)

	require.NoError(t, s.Open())
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Put("ns", "k", "v"), ErrNotOpen)
}

func TestFileStore_OpenIsIdempotent(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Put("ns", "k", "v"))
	require.NoError(t, s.Open())

	v, ok, err := s.Get("ns", "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestFileStore_CorruptedFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	s := NewFileStore(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, s.Open())
	defer s.Close()

	_, ok, err := s.Get("ns", "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put("ns", "k", "v"))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"schema_version": 1`)
}

func TestFileStore_NullNamespaceIsDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"schema_version":1,"namespaces":{"a":null,"b":{"k":"kept"}}}`), 0600))

	s := NewFileStore(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, s.Open())
	defer s.Close()

	_, ok, err := s.Get("a", "k")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := s.Get("b", "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "kept", v)

	require.NotPanics(t, func() { require.NoError(t, s.Put("a", "k", "v")) })
	v, ok, err = s.Get("a", "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestFileStore_FailedWriteRollsBack(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "s.json"), nil)
	require.NoError(t, s.Open())
	defer s.Close()
	require.NoError(t, s.Put("ns", "k", "v1"))

	require.NoError(t, os.Chmod(dir, 0500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0700) })

	assert.Error(t, s.Put("ns", "k", "v2"))
	v, _, err := s.Get("ns", "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", v)
}
