package storage_test

import (
	"context"
	"errors"
	"testing"

	"populator/storage"
	"populator/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func strPtr(s string) *string { return &s }

func seed(t *testing.T, s storage.Store, titles ...string) []types.Article {
	t.Helper()
	in := make([]types.Article, len(titles))
	for i, title := range titles {
		in[i] = types.NewArticle(types.ScrapedItem{Title: title, Link: strPtr("/" + title)})
	}
	out, err := s.InsertArticles(context.Background(), in)
	require.NoError(t, err)
	return out
}

// runStoreContract exercises behavior every Store implementation must share
func runStoreContract(t *testing.T, newStore func(t *testing.T) storage.Store) {
	ctx := context.Background()

	t.Run("insert and list keep order and defaults", func(t *testing.T) {
		s := newStore(t)
		inserted := seed(t, s, "a", "b", "c")
		require.Len(t, inserted, 3)

		list, err := s.ListArticles(ctx, storage.ArticleFilter{})
		require.NoError(t, err)
		require.Len(t, list, 3)
		for i, a := range list {
			assert.Equal(t, inserted[i].ID, a.ID)
			assert.False(t, a.Saved)
			assert.Nil(t, a.Note)
		}
		assert.Equal(t, "b", list[1].Title)
	})

	t.Run("insert empty batch", func(t *testing.T) {
		s := newStore(t)
		out, err := s.InsertArticles(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, out)

		list, err := s.ListArticles(ctx, storage.ArticleFilter{})
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("missing link stays absent", func(t *testing.T) {
		s := newStore(t)
		out, err := s.InsertArticles(ctx, []types.Article{types.NewArticle(types.ScrapedItem{})})
		require.NoError(t, err)

		got, err := s.FindArticle(ctx, out[0].ID.Hex())
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Nil(t, got.Link)
		assert.Equal(t, "", got.Title)
	})

	t.Run("duplicates are kept", func(t *testing.T) {
		s := newStore(t)
		seed(t, s, "same")
		seed(t, s, "same")

		list, err := s.ListArticles(ctx, storage.ArticleFilter{})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("find unknown returns nil", func(t *testing.T) {
		s := newStore(t)
		got, err := s.FindArticle(ctx, bson.NewObjectID().Hex())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("malformed id", func(t *testing.T) {
		s := newStore(t)
		_, err := s.FindArticle(ctx, "not-an-id")
		assert.True(t, errors.Is(err, storage.ErrInvalidID))

		_, err = s.AttachNote(ctx, "nope", bson.NewObjectID())
		assert.True(t, errors.Is(err, storage.ErrInvalidID))

		_, err = s.SetSaved(ctx, "nope", true)
		assert.True(t, errors.Is(err, storage.ErrInvalidID))
	})

	t.Run("attach note and populate", func(t *testing.T) {
		s := newStore(t)
		a := seed(t, s, "story")[0]

		note, err := s.CreateNote(ctx, map[string]any{"text": "hello", "_id": "ignored"})
		require.NoError(t, err)
		assert.Equal(t, "hello", note.Fields["text"])
		assert.NotContains(t, note.Fields, "_id")

		updated, err := s.AttachNote(ctx, a.ID.Hex(), note.ID)
		require.NoError(t, err)
		require.NotNil(t, updated)
		require.NotNil(t, updated.Note)
		assert.Equal(t, note.ID, *updated.Note)

		got, err := s.FindArticle(ctx, a.ID.Hex())
		require.NoError(t, err)
		require.NotNil(t, got.Note)
		assert.Equal(t, note.ID, got.Note.ID)
		assert.Equal(t, "hello", got.Note.Fields["text"])
	})

	t.Run("reattach overwrites reference", func(t *testing.T) {
		s := newStore(t)
		a := seed(t, s, "story")[0]

		first, err := s.CreateNote(ctx, map[string]any{"text": "one"})
		require.NoError(t, err)
		second, err := s.CreateNote(ctx, map[string]any{"text": "two"})
		require.NoError(t, err)

		_, err = s.AttachNote(ctx, a.ID.Hex(), first.ID)
		require.NoError(t, err)
		_, err = s.AttachNote(ctx, a.ID.Hex(), second.ID)
		require.NoError(t, err)

		got, err := s.FindArticle(ctx, a.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, "two", got.Note.Fields["text"])
	})

	t.Run("attach to unknown article", func(t *testing.T) {
		s := newStore(t)
		note, err := s.CreateNote(ctx, map[string]any{"text": "orphan"})
		require.NoError(t, err)

		updated, err := s.AttachNote(ctx, bson.NewObjectID().Hex(), note.ID)
		require.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("dangling note reference populates as nil", func(t *testing.T) {
		s := newStore(t)
		a := seed(t, s, "story")[0]

		_, err := s.AttachNote(ctx, a.ID.Hex(), bson.NewObjectID())
		require.NoError(t, err)

		got, err := s.FindArticle(ctx, a.ID.Hex())
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Nil(t, got.Note)
	})

	t.Run("saved filter", func(t *testing.T) {
		s := newStore(t)
		arts := seed(t, s, "a", "b", "c")

		updated, err := s.SetSaved(ctx, arts[1].ID.Hex(), true)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.True(t, updated.Saved)

		saved, err := s.ListArticles(ctx, storage.ArticleFilter{SavedOnly: true})
		require.NoError(t, err)
		require.Len(t, saved, 1)
		assert.Equal(t, arts[1].ID, saved[0].ID)
	})

	t.Run("clear removes every article", func(t *testing.T) {
		s := newStore(t)
		seed(t, s, "a", "b")

		res, err := s.ClearArticles(ctx)
		require.NoError(t, err)
		assert.True(t, res.Acknowledged)
		assert.Equal(t, int64(2), res.DeletedCount)

		list, err := s.ListArticles(ctx, storage.ArticleFilter{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
