package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteCache(t *testing.T) *SQLiteCache {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

var _ Cache = (*SQLiteCache)(nil)

func TestSQLite_Cache_SetAndGet(t *testing.T) {
	st := newTestSQLiteCache(t)
	ctx := context.Background()

	err := st.SetCached(ctx, "edgar:tickers", []byte(`{"0":{"ticker":"DDOG"}}`), time.Hour)
	require.NoError(t, err)

	data, err := st.GetCached(ctx, "edgar:tickers")
	require.NoError(t, err)
	assert.Equal(t, `{"0":{"ticker":"DDOG"}}`, string(data))
}

func TestSQLite_Cache_Missing(t *testing.T) {
	st := newTestSQLiteCache(t)

	data, err := st.GetCached(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSQLite_Cache_Expired(t *testing.T) {
	st := newTestSQLiteCache(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return base }
	require.NoError(t, st.SetCached(ctx, "doc", []byte("body"), time.Minute))

	st.now = func() time.Time { return base.Add(2 * time.Minute) }
	data, err := st.GetCached(ctx, "doc")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestSQLite_Cache_Overwrite(t *testing.T) {
	st := newTestSQLiteCache(t)
	ctx := context.Background()

	require.NoError(t, st.SetCached(ctx, "doc", []byte("v1"), time.Hour))
	require.NoError(t, st.SetCached(ctx, "doc", []byte("v2"), time.Hour))

	data, err := st.GetCached(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestSQLite_Cache_DeleteExpired(t *testing.T) {
	st := newTestSQLiteCache(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return base }
	require.NoError(t, st.SetCached(ctx, "short", []byte("a"), time.Minute))
	require.NoError(t, st.SetCached(ctx, "long", []byte("b"), 24*time.Hour))

	st.now = func() time.Time { return base.Add(time.Hour) }
	n, err := st.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := st.GetCached(ctx, "long")
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
}
