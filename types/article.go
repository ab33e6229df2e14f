package types

import (
	"encoding/json"
	"maps"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Article is a scraped record persisted in the articles collection
type Article struct {
	ID    bson.ObjectID  `json:"_id" bson:"_id"`
	Title string         `json:"title" bson:"title"`
	Link  *string        `json:"link,omitempty" bson:"link,omitempty"`
	Note  *bson.ObjectID `json:"note,omitempty" bson:"note,omitempty"`
	Saved bool           `json:"saved" bson:"saved"`
}

// PopulatedArticle is an Article whose note reference has been resolved.
// Note is nil, and omitted from JSON, when the article has no note or the
// reference dangles.
type PopulatedArticle struct {
	ID    bson.ObjectID `json:"_id"`
	Title string        `json:"title"`
	Link  *string       `json:"link,omitempty"`
	Note  *Note         `json:"note,omitempty"`
	Saved bool          `json:"saved"`
}

// Populate returns a copy of a with the given note attached
func (a Article) Populate(note *Note) *PopulatedArticle {
	return &PopulatedArticle{
		ID:    a.ID,
		Title: a.Title,
		Link:  a.Link,
		Note:  note,
		Saved: a.Saved,
	}
}

// ScrapedItem is one record produced by the markup extractor
type ScrapedItem struct {
	Title string  `json:"title"`
	Link  *string `json:"link,omitempty"`
}

// NewArticle builds an unsaved Article from an extracted item with a fresh ID
func NewArticle(item ScrapedItem) Article {
	return Article{
		ID:    bson.NewObjectID(),
		Title: item.Title,
		Link:  item.Link,
	}
}

// Note is a free-form annotation. Fields holds whatever the client posted.
type Note struct {
	ID     bson.ObjectID  `bson:"_id"`
	Fields map[string]any `bson:",inline"`
}

// NewNote creates a Note with a fresh ID. Any "_id" key in fields is dropped.
func NewNote(fields map[string]any) *Note {
	body := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		body[k] = v
	}
	return &Note{ID: bson.NewObjectID(), Fields: body}
}

// MarshalJSON flattens the note fields next to its _id
func (n Note) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Fields)+1)
	maps.Copy(out, n.Fields)
	out["_id"] = n.ID
	return json.Marshal(out)
}

// DeleteResult reports the outcome of a bulk delete
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}
