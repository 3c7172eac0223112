// Package repository provides CRUD access to the document collections.
package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Document is implemented by every stored entity so the collection can assign
// its identifier and creation timestamps.
type Document interface {
	SetID(id primitive.ObjectID)
	Stamp(now time.Time)
}

// UpdateResult reports the outcome of Update.
type UpdateResult[T any] struct {
	// Matched is false when no document has the identifier.
	Matched bool
	// Changed is true when at least one supplied field differed from the
	// stored value. updatedAt is refreshed regardless.
	Changed bool
	// Document is the stored document after the update; nil unless Matched.
	Document *T
}

// Source hands out collections of the connected database.
type Source interface {
	Collection(name string) (*mongo.Collection, error)
}

// Option configures a Collection.
type Option func(*settings)

type settings struct {
	now func() time.Time
}

// WithClock replaces time.Now as the source of createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// protected keys are managed by the collection and never taken from a payload.
var protected = map[string]bool{"_id": true, "id": true, "createdAt": true, "updatedAt": true}

// Collection is a typed CRUD wrapper around one MongoDB collection.
type Collection[T any, PT interface {
	*T
	Document
}] struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewCollection[T any, PT interface {
	*T
	Document
}](coll *mongo.Collection, opts ...Option) *Collection[T, PT] {
	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return &Collection[T, PT]{coll: coll, now: s.now}
}

// Name returns the underlying collection name.
func (c *Collection[T, PT]) Name() string {
	return c.coll.Name()
}

// clock returns the current time at the precision MongoDB stores dates with,
// so documents compare equal after a round trip.
func (c *Collection[T, PT]) clock() time.Time {
	return c.now().UTC().Truncate(time.Millisecond)
}

// ParseID converts a canonical hex string into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil || oid.Hex() != id {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// IsValidID reports whether ParseID would accept id.
func IsValidID(id string) bool {
	_, err := ParseID(id)
	return err == nil
}

// FindAll returns every document, oldest first. An empty collection yields an
// empty, non-nil slice.
func (c *Collection[T, PT]) FindAll(ctx context.Context) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := c.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.coll.Name(), err)
	}
	return docs, nil
}

// FindByID returns the document with the given id, or nil when none exists.
func (c *Collection[T, PT]) FindByID(ctx context.Context, id string) (*T, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	var doc T
	err = c.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s %s: %w", c.coll.Name(), id, err)
	}
	return &doc, nil
}

// Create inserts doc with a fresh identifier and createdAt == updatedAt == now,
// overwriting whatever the caller put in those fields.
func (c *Collection[T, PT]) Create(ctx context.Context, doc *T) (*T, error) {
	p := PT(doc)
	p.SetID(primitive.NewObjectID())
	p.Stamp(c.clock())

	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert %s: %w", c.coll.Name(), err)
	}
	return doc, nil
}

// Update sets each key of fields on the document (a key-wise overwrite, not a
// deep merge) and moves updatedAt forward. Keys absent from fields are
// untouched.
//
// updatedAt becomes max(now, stored updatedAt + 1ms) so it strictly increases
// even when two writes land in the same millisecond.
func (c *Collection[T, PT]) Update(ctx context.Context, id string, fields bson.M) (*UpdateResult[T], error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	now := c.clock()
	set := bson.M{}
	stage := bson.M{
		"updatedAt": bson.M{"$max": bson.A{now, bson.M{"$add": bson.A{"$updatedAt", 1}}}},
	}
	for k, v := range fields {
		if !protected[k] {
			set[k] = v
			// pipeline stages read "$x" strings and documents as expressions
			stage[k] = bson.M{"$literal": v}
		}
	}

	pipeline := mongo.Pipeline{{{Key: "$set", Value: stage}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	before, err := c.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, pipeline, opts).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &UpdateResult[T]{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", c.coll.Name(), id, err)
	}

	dirty := changed(before, set)
	set["updatedAt"] = nextUpdatedAt(before, now)
	after, err := applySet[T](before, set)
	if err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", c.coll.Name(), id, err)
	}

	return &UpdateResult[T]{
		Matched:  true,
		Changed:  dirty,
		Document: after,
	}, nil
}

// Delete removes the document and reports whether one existed.
func (c *Collection[T, PT]) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := ParseID(id)
	if err != nil {
		return false, err
	}

	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("delete %s %s: %w", c.coll.Name(), id, err)
	}
	return res.DeletedCount > 0, nil
}

// applySet reproduces the server-side $set on the pre-update document.
func applySet[T any](before bson.Raw, set bson.M) (*T, error) {
	var doc bson.M
	if err := bson.Unmarshal(before, &doc); err != nil {
		return nil, err
	}
	for k, v := range set {
		doc[k] = v
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}

	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// nextUpdatedAt mirrors the server-side $max over the pre-update document.
func nextUpdatedAt(before bson.Raw, now time.Time) time.Time {
	v, err := before.LookupErr("updatedAt")
	if err != nil {
		return now
	}
	ms, ok := v.DateTimeOK()
	if !ok {
		return now
	}
	if bumped := time.UnixMilli(ms + 1).UTC(); bumped.After(now) {
		return bumped
	}
	return now
}

// changed compares each set value with its stored encoding.
func changed(before bson.Raw, set bson.M) bool {
	for k, v := range set {
		old, err := before.LookupErr(k)
		if err != nil {
			return true
		}
		t, data, err := bson.MarshalValue(v)
		if err != nil || t != old.Type || !bytes.Equal(data, old.Value) {
			return true
		}
	}
	return false
}
