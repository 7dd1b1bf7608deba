package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := s.Record(ctx, Entry{
		Kind:       "download",
		URL:        "https://manatoki469.net/comic/1",
		Title:      "Foo",
		Items:      12,
		Status:     StatusCompleted,
		StartedAt:  base,
		FinishedAt: base.Add(time.Minute),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.ID)

	_, err = s.Record(ctx, Entry{
		Kind:      "search",
		Status:    StatusSkipped,
		StartedAt: base.Add(time.Hour),
		Detail:    "session closed",
	})
	require.NoError(t, err)

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "search", got[0].Kind)
	assert.Equal(t, "session closed", got[0].Detail)

	assert.Equal(t, first.ID, got[1].ID)
	assert.Equal(t, "Foo", got[1].Title)
	assert.Equal(t, 12, got[1].Items)
	assert.Equal(t, StatusCompleted, got[1].Status)
	assert.True(t, base.Equal(got[1].StartedAt))
}

func TestRecentLimit(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.Record(ctx, Entry{Kind: "captcha", Status: StatusCompleted, StartedAt: time.Unix(int64(i), 0)})
		require.NoError(t, err)
	}

	got, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, int64(4), got[0].StartedAt.Unix())
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), Entry{Kind: "download", Status: StatusAborted})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, StatusAborted, got[0].Status)
}

func TestOpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, path, s.Path())
	assert.FileExists(t, path)
}
