package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactbook/contactbook-go/internal/model"
)

func TestFileStore_Lifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts", "credentials.json")
	store := NewFileStore(path)

	_, err := store.Get()
	assert.ErrorIs(t, err, ErrNoSession)

	sess := Session{Token: "tok", User: model.UserResponse{ID: "u1", Email: "a@x.com"}}
	require.NoError(t, store.Set(sess))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := NewFileStore(path).Get()
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err = store.Get()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path).Get()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSession)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.Set(Session{Token: "tok"}))
	got, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)

	require.NoError(t, store.Clear())
	_, err = store.Get()
	assert.ErrorIs(t, err, ErrNoSession)
}
