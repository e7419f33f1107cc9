// Package repository defines the record store every service reads and writes
// through. Implementations live in the mongodb and memory subpackages.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
)

// ErrNotFound is returned when a lookup by id or filter matches nothing.
var ErrNotFound = errors.New("record not found")

// Store is the document store adapter. Documents are keyed by a string id
// stored under models.FieldID.
type Store interface {
	FindAll(ctx context.Context, collection string, filter Filter) ([]Document, error)
	FindOne(ctx context.Context, collection string, filter Filter) (Document, error)
	FindByID(ctx context.Context, collection, id string) (Document, error)
	InsertOne(ctx context.Context, collection string, doc Document) (string, error)
	UpdateOne(ctx context.Context, collection, id string, set Document) error
	DeleteOne(ctx context.Context, collection, id string) error
	Distinct(ctx context.Context, collection, field string, filter Filter) ([]any, error)
}

// Document is a stored record. Values are normalised on read: ids are hex
// strings and dates are time.Time in UTC.
type Document map[string]any

// ID returns the document id.
func (d Document) ID() string {
	return d.String(models.FieldID)
}

// String returns the field as text, or "" when absent or not a string.
func (d Document) String(field string) string {
	if d == nil {
		return ""
	}
	if s, ok := d[field].(string); ok {
		return s
	}
	return ""
}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Normalize rewrites driver specific value types into the forms services
// expect and returns the document for chaining.
func (d Document) Normalize() Document {
	for k, v := range d {
		d[k] = normalizeValue(v)
	}
	return d
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	case int32:
		return int64(t)
	case int:
		return int64(t)
	default:
		return v
	}
}

// Encode converts a bson tagged struct into a Document.
func Encode(v any) (Document, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc Document
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return doc.Normalize(), nil
}

// Decode fills a bson tagged struct from a Document.
func Decode(doc Document, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// DisplayName joins the first and last name fields of an employee document.
func DisplayName(doc Document) string {
	return strings.TrimSpace(doc.String(models.FieldFirstName) + " " + doc.String(models.FieldLastName))
}
