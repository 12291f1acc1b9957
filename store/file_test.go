package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laughschool/models"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	return s, path
}

func sampleItem(id string) models.Item {
	return models.Item{
		ID:        id,
		Type:      models.TypePoll,
		Title:     "Best?",
		CreatedAt: "2026-08-01T12:00:00Z",
		Approved:  true,
		Laughs:    4,
		Poll: &models.Poll{
			Question:   "Best?",
			Options:    []models.Option{{Text: "A", Votes: 2}, {Text: "B", Votes: 1}},
			TotalVotes: 3,
		},
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	want := sampleItem("p1")
	require.NoError(t, s.Put(ctx, want))

	got, err := s.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// put(get(id)) is a no-op: every field survives serialization.
	require.NoError(t, s.Put(ctx, got))
	again, err := s.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, want, again)

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestPutUpsertsByID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	item := sampleItem("p1")
	require.NoError(t, s.Put(ctx, item))

	item.Title = "Renamed"
	require.NoError(t, s.Put(ctx, item))

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Renamed", items[0].Title)
}

func TestGetMissing(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAbsentIsNoOp(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, sampleItem("p1")))
	require.NoError(t, s.Delete(ctx, "missing"))

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1, "store unchanged after deleting an absent id")

	require.NoError(t, s.Delete(ctx, "p1"))
	items, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSurvivesReopen(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, sampleItem("p1")))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Best?", got.Title)
}

func TestDataFileIsAlwaysValidJSON(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		item := sampleItem(id)
		item.Laughs = i
		require.NoError(t, s.Put(ctx, item))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		var doc fileDoc
		require.NoError(t, json.Unmarshal(raw, &doc), "on-disk document must never be partial")
		assert.Len(t, doc.Items, i+1)
	}
}
