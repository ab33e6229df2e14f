package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"populator/types"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Collection names match the pluralized model names the data was first
// written under.
const (
	ArticlesCollection = "articles"
	NotesCollection    = "notes"

	connectTimeout = 10 * time.Second
)

// MongoConfig selects the MongoDB deployment and database
type MongoConfig struct {
	URI      string
	Database string
}

// MongoStore is the MongoDB-backed Store
type MongoStore struct {
	client   *mongo.Client
	articles *mongo.Collection
	notes    *mongo.Collection
}

// NewMongoStore connects, pings and ensures indexes. The returned store owns
// the client; Close disconnects it.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(connectTimeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &MongoStore{
		client:   client,
		articles: db.Collection(ArticlesCollection),
		notes:    db.Collection(NotesCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.articles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "saved", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create saved index: %w", err)
	}
	return nil
}

func (s *MongoStore) InsertArticles(ctx context.Context, articles []types.Article) ([]types.Article, error) {
	if len(articles) == 0 {
		return []types.Article{}, nil
	}

	out := make([]types.Article, len(articles))
	for i, a := range articles {
		if a.ID.IsZero() {
			a.ID = bson.NewObjectID()
		}
		out[i] = a
	}

	if _, err := s.articles.InsertMany(ctx, out); err != nil {
		return nil, fmt.Errorf("insert articles: %w", err)
	}
	return out, nil
}

func (s *MongoStore) ListArticles(ctx context.Context, filter ArticleFilter) ([]types.Article, error) {
	query := bson.M{}
	if filter.SavedOnly {
		query["saved"] = true
	}

	cur, err := s.articles.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}

	out := []types.Article{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	return out, nil
}

func (s *MongoStore) FindArticle(ctx context.Context, id string) (*types.PopulatedArticle, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	var a types.Article
	if err := s.articles.FindOne(ctx, bson.M{"_id": oid}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find article %s: %w", id, err)
	}

	var note *types.Note
	if a.Note != nil {
		var n types.Note
		err := s.notes.FindOne(ctx, bson.M{"_id": *a.Note}).Decode(&n)
		switch {
		case err == nil:
			note = &n
		case errors.Is(err, mongo.ErrNoDocuments):
		default:
			return nil, fmt.Errorf("populate note %s: %w", a.Note.Hex(), err)
		}
	}
	return a.Populate(note), nil
}

func (s *MongoStore) SetSaved(ctx context.Context, id string, saved bool) (*types.Article, error) {
	return s.updateArticle(ctx, id, bson.M{"saved": saved})
}

func (s *MongoStore) ClearArticles(ctx context.Context) (*types.DeleteResult, error) {
	res, err := s.articles.DeleteMany(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("delete articles: %w", err)
	}
	return &types.DeleteResult{Acknowledged: res.Acknowledged, DeletedCount: res.DeletedCount}, nil
}

func (s *MongoStore) CreateNote(ctx context.Context, fields map[string]any) (*types.Note, error) {
	note := types.NewNote(fields)
	if _, err := s.notes.InsertOne(ctx, note); err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return note, nil
}

func (s *MongoStore) AttachNote(ctx context.Context, articleID string, noteID bson.ObjectID) (*types.Article, error) {
	return s.updateArticle(ctx, articleID, bson.M{"note": noteID})
}

// updateArticle applies $set and returns the document after the update
func (s *MongoStore) updateArticle(ctx context.Context, id string, set bson.M) (*types.Article, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	var a types.Article
	err = s.articles.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("update article %s: %w", id, err)
	}
	return &a, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
