package storage

import (
	"context"
	"sync"

	"populator/types"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryStore keeps everything in process memory. Article order is
// insertion order.
type MemoryStore struct {
	mu       sync.RWMutex
	articles []types.Article
	notes    map[bson.ObjectID]*types.Note
}

// NewMemoryStore returns an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notes: make(map[bson.ObjectID]*types.Note)}
}

func (m *MemoryStore) InsertArticles(_ context.Context, articles []types.Article) ([]types.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.Article, len(articles))
	for i, a := range articles {
		if a.ID.IsZero() {
			a.ID = bson.NewObjectID()
		}
		m.articles = append(m.articles, a)
		out[i] = a
	}
	return out, nil
}

func (m *MemoryStore) ListArticles(_ context.Context, filter ArticleFilter) ([]types.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Article, 0, len(m.articles))
	for _, a := range m.articles {
		if filter.SavedOnly && !a.Saved {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *MemoryStore) FindArticle(_ context.Context, id string) (*types.PopulatedArticle, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(oid)
	if i < 0 {
		return nil, nil
	}
	a := m.articles[i]

	var note *types.Note
	if a.Note != nil {
		if n, ok := m.notes[*a.Note]; ok {
			cp := *n
			note = &cp
		}
	}
	return a.Populate(note), nil
}

func (m *MemoryStore) SetSaved(_ context.Context, id string, saved bool) (*types.Article, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(oid)
	if i < 0 {
		return nil, nil
	}
	m.articles[i].Saved = saved
	a := m.articles[i]
	return &a, nil
}

func (m *MemoryStore) ClearArticles(_ context.Context) (*types.DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.articles)
	m.articles = nil
	return &types.DeleteResult{Acknowledged: true, DeletedCount: int64(n)}, nil
}

func (m *MemoryStore) CreateNote(_ context.Context, fields map[string]any) (*types.Note, error) {
	note := types.NewNote(fields)

	m.mu.Lock()
	m.notes[note.ID] = note
	m.mu.Unlock()

	cp := *note
	return &cp, nil
}

func (m *MemoryStore) AttachNote(_ context.Context, articleID string, noteID bson.ObjectID) (*types.Article, error) {
	oid, err := ParseID(articleID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(oid)
	if i < 0 {
		return nil, nil
	}
	ref := noteID
	m.articles[i].Note = &ref
	a := m.articles[i]
	return &a, nil
}

// NoteCount reports how many notes exist
func (m *MemoryStore) NoteCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.notes)
}

func (m *MemoryStore) Close(context.Context) error { return nil }

func (m *MemoryStore) indexOf(id bson.ObjectID) int {
	for i := range m.articles {
		if m.articles[i].ID == id {
			return i
		}
	}
	return -1
}

var _ Store = (*MemoryStore)(nil)
