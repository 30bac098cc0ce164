package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const defaultAppID = "worxstance_v1"

var (
	ErrNotFound        = errors.New("document not found")
	ErrUnauthenticated = errors.New("user not authenticated")
)

// Document is a stored record. The "id" key always holds the document id.
type Document map[string]any

func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// Store is a document store scoped to a single user of a single app.
type Store interface {
	// Set creates or overwrites a document.
	Set(ctx context.Context, collection, id string, data any) error
	// Add stores data under a generated id and returns it.
	Add(ctx context.Context, collection string, data any) (string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	// Update merges top-level fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	// Query returns every document of a collection ordered by id.
	Query(ctx context.Context, collection string) ([]Document, error)
	// Subscribe delivers the current collection and then a fresh snapshot after every write.
	// The channel is closed when ctx is done.
	Subscribe(ctx context.Context, collection string) (<-chan []Document, error)
}

// Decode copies a document into a struct using its json tags.
func Decode(doc Document, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(map[string]any(doc)); err != nil {
		return fmt.Errorf("decode document %q: %w", doc.ID(), err)
	}
	return nil
}

// DecodeAll decodes every document into a new T.
func DecodeAll[T any](docs []Document) ([]*T, error) {
	out := make([]*T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := Decode(doc, &item); err != nil {
			return nil, err
		}
		out = append(out, &item)
	}
	return out, nil
}

func validName(kind, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%s is required", kind)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid %s %q", kind, name)
	}
	return nil
}
