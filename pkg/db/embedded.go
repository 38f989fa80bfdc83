package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// EmbeddedStore manages documents addressed by a slug "id" field (falling back
// to _id) that carry an array of sub-documents, each with its own "id".
type EmbeddedStore[T any] struct {
	coll       *mongo.Collection
	itemsField string
	now        func() time.Time
}

func NewEmbeddedStore[T any](coll *mongo.Collection, itemsField string) *EmbeddedStore[T] {
	return &EmbeddedStore[T]{coll: coll, itemsField: itemsField, now: time.Now}
}

// keyFilters returns the filters to try in order for a caller-supplied key.
func keyFilters(key string) []bson.M {
	filters := []bson.M{{"id": key}}
	if oid, ok := ParseObjectID(key); ok {
		filters = append(filters, bson.M{"_id": oid})
	}
	return filters
}

// FirstMatch runs fn against the slug filter, then the _id filter when key is an
// ObjectID, stopping at the first result other than mongo.ErrNoDocuments.
func FirstMatch(key string, fn func(filter bson.M) error) error {
	var err error
	for _, filter := range keyFilters(key) {
		err = fn(filter)
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return err
		}
	}
	return err
}

func (s *EmbeddedStore[T]) Insert(ctx context.Context, doc *T) error {
	_, err := s.coll.InsertOne(ctx, doc)
	return err
}

func (s *EmbeddedStore[T]) List(ctx context.Context, filter bson.M, sort bson.D) ([]T, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByKey loads by slug id, then by _id. Returns mongo.ErrNoDocuments when absent.
func (s *EmbeddedStore[T]) FindByKey(ctx context.Context, key string) (*T, error) {
	var doc T
	err := FirstMatch(key, func(filter bson.M) error {
		return s.coll.FindOne(ctx, filter).Decode(&doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Update sets fields on the matching document and returns it.
func (s *EmbeddedStore[T]) Update(ctx context.Context, key string, fields bson.M) (*T, error) {
	fields["updatedAt"] = s.now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc T
	err := FirstMatch(key, func(filter bson.M) error {
		return s.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": fields}, opts).Decode(&doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Delete removes the matching document. Returns mongo.ErrNoDocuments when absent.
func (s *EmbeddedStore[T]) Delete(ctx context.Context, key string) error {
	return FirstMatch(key, func(filter bson.M) error {
		res, err := s.coll.DeleteOne(ctx, filter)
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return mongo.ErrNoDocuments
		}
		return nil
	})
}

// PushItem appends item unless an item with itemID already exists. No match
// (missing parent or duplicate item) yields mongo.ErrNoDocuments.
func (s *EmbeddedStore[T]) PushItem(ctx context.Context, key, itemID string, item any) (*T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$push": bson.M{s.itemsField: item},
		"$set":  bson.M{"updatedAt": s.now().UTC()},
	}
	var doc T
	err := FirstMatch(key, func(filter bson.M) error {
		filter[s.itemsField+".id"] = bson.M{"$ne": itemID}
		return s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReplaceItem overwrites the item with itemID in place.
func (s *EmbeddedStore[T]) ReplaceItem(ctx context.Context, key, itemID string, item any) (*T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{
		s.itemsField + ".$": item,
		"updatedAt":         s.now().UTC(),
	}}
	var doc T
	err := FirstMatch(key, func(filter bson.M) error {
		filter[s.itemsField+".id"] = itemID
		return s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// PullItem removes the item with itemID.
func (s *EmbeddedStore[T]) PullItem(ctx context.Context, key, itemID string) (*T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$pull": bson.M{s.itemsField: bson.M{"id": itemID}},
		"$set":  bson.M{"updatedAt": s.now().UTC()},
	}
	var doc T
	err := FirstMatch(key, func(filter bson.M) error {
		filter[s.itemsField+".id"] = itemID
		return s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
