package localstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_PutGet(t *testing.T) {
	s := openMemory(t)

	require.NoError(t, s.Put(KeySelectedNetwork, "New marketplace"))

	var got string
	require.NoError(t, s.Get(KeySelectedNetwork, &got))
	assert.Equal(t, "New marketplace", got)
}

func TestStore_GetMissing(t *testing.T) {
	s := openMemory(t)

	var got bool
	assert.ErrorIs(t, s.Get(KeyAnalyticsConsent, &got), ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	s := openMemory(t)
	require.NoError(t, s.Put(KeyFeedbackDismissed, true))

	require.NoError(t, s.Delete(KeyFeedbackDismissed))
	require.NoError(t, s.Delete(KeyFeedbackDismissed))

	var got bool
	assert.ErrorIs(t, s.Get(KeyFeedbackDismissed, &got), ErrNotFound)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(KeyFilterPresets, []map[string]any{{"name": "gpu"}}))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	var got []map[string]any
	require.NoError(t, s.Get(KeyFilterPresets, &got))
	assert.Equal(t, "gpu", got[0]["name"])
}

func TestStore_DecodeError(t *testing.T) {
	s := openMemory(t)
	require.NoError(t, s.Put(KeyAuthSession, "not an object"))

	var v struct{ Token string }
	err := s.Get(KeyAuthSession, &v)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
