// Package storage persists Articles and Notes.
package storage

import (
	"context"
	"errors"
	"fmt"

	"populator/types"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrInvalidID is returned when an identifier is not a valid ObjectID
var ErrInvalidID = errors.New("invalid id")

// ArticleFilter narrows ListArticles
type ArticleFilter struct {
	SavedOnly bool
}

// Store is the document store used by the route handlers. Lookups that
// find nothing return a nil result and a nil error.
type Store interface {
	// InsertArticles bulk-creates articles and returns them as stored.
	InsertArticles(ctx context.Context, articles []types.Article) ([]types.Article, error)
	ListArticles(ctx context.Context, filter ArticleFilter) ([]types.Article, error)
	// FindArticle returns the article with its note reference resolved.
	FindArticle(ctx context.Context, id string) (*types.PopulatedArticle, error)
	SetSaved(ctx context.Context, id string, saved bool) (*types.Article, error)
	// ClearArticles removes every article. Notes are left in place.
	ClearArticles(ctx context.Context) (*types.DeleteResult, error)
	CreateNote(ctx context.Context, fields map[string]any) (*types.Note, error)
	// AttachNote points the article's note reference at noteID, replacing
	// any previous reference, and returns the updated article.
	AttachNote(ctx context.Context, articleID string, noteID bson.ObjectID) (*types.Article, error)
	Close(ctx context.Context) error
}

// ParseID converts a hex string into an ObjectID
func ParseID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}
