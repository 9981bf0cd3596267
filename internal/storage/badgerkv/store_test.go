package badgerkv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestWatermarkAbsentReadsEmpty(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)

	wm, err := store.Watermark("never-seen")
	require.NoError(t, err)
	require.Equal(t, "", wm)
}

func TestWatermarkRoundTrip(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)

	require.NoError(t, store.SetWatermark("chan-1", "1134567890123456789"))
	wm, err := store.Watermark("chan-1")
	require.NoError(t, err)
	require.Equal(t, "1134567890123456789", wm)

	// Another channel's watermark is independent.
	other, err := store.Watermark("chan-2")
	require.NoError(t, err)
	require.Equal(t, "", other)
}

func TestWatermarkOverwrite(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)

	require.NoError(t, store.SetWatermark("chan-1", "400"))
	require.NoError(t, store.SetWatermark("chan-1", "500"))
	wm, err := store.Watermark("chan-1")
	require.NoError(t, err)
	require.Equal(t, "500", wm)
}

func TestCounterIncrement(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)

	v, err := store.Counter("likes", "my-post")
	require.NoError(t, err)
	require.Equal(t, int64(0), v)

	v, err = store.IncrementCounter("likes", "my-post")
	require.NoError(t, err)
	require.Equal(t, int64(1), v)

	v, err = store.IncrementCounter("likes", "my-post")
	require.NoError(t, err)
	require.Equal(t, int64(2), v)

	// Views for the same slug count separately.
	v, err = store.IncrementCounter("views", "my-post")
	require.NoError(t, err)
	require.Equal(t, int64(1), v)

	v, err = store.Counter("likes", "my-post")
	require.NoError(t, err)
	require.Equal(t, int64(2), v)
}

func TestLeaseMutualExclusion(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)

	got, err := store.AcquireLease("watch", time.Minute)
	require.NoError(t, err)
	require.True(t, got)

	got, err = store.AcquireLease("watch", time.Minute)
	require.NoError(t, err)
	require.False(t, got)

	require.NoError(t, store.ReleaseLease("watch"))

	got, err = store.AcquireLease("watch", time.Minute)
	require.NoError(t, err)
	require.True(t, got)
}
