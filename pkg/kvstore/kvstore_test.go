package kvstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, m.Delete(ctx, "k"))
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_TTLExpiry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", "v", time.Hour))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	now = now.Add(2 * time.Hour)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound, "entry past its TTL is gone")
}

func TestMemory_ZeroTTLNeverExpires(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	now := time.Now()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	now = now.Add(24 * 365 * time.Hour)

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestFile_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	first, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "auth:token", "tok-123", 0))
	require.NoError(t, first.Close())

	second, err := NewFile(path)
	require.NoError(t, err)
	got, err := second.Get(ctx, "auth:token")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", got)
}

func TestFile_ExpiredEntryDroppedOnRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	f, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, "k", "v", time.Nanosecond))

	time.Sleep(10 * time.Millisecond)

	_, err = f.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// The expiry is durable: a reopen does not resurrect the entry.
	reopened, err := NewFile(path)
	require.NoError(t, err)
	_, err = reopened.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFile_DeleteRemovesDurably(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	f, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, "k", "v", 0))
	require.NoError(t, f.Delete(ctx, "k"))

	reopened, err := NewFile(path)
	require.NoError(t, err)
	_, err = reopened.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFile_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")
	ctx := context.Background()

	f, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, "k", "v", 0))

	got, err := f.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}
