package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestKeyFilters(t *testing.T) {
	assert.Equal(t, []bson.M{{"id": "web-design"}}, keyFilters("web-design"))

	oid := bson.NewObjectID()
	filters := keyFilters(oid.Hex())
	assert.Len(t, filters, 2)
	assert.Equal(t, bson.M{"id": oid.Hex()}, filters[0])
	assert.Equal(t, bson.M{"_id": oid}, filters[1])
}

func TestFirstMatchStopsOnSuccessOrHardError(t *testing.T) {
	oid := bson.NewObjectID().Hex()

	var seen []bson.M
	err := FirstMatch(oid, func(filter bson.M) error {
		seen = append(seen, filter)
		if _, ok := filter["_id"]; ok {
			return nil
		}
		return mongo.ErrNoDocuments
	})
	assert.NoError(t, err)
	assert.Len(t, seen, 2)

	boom := errors.New("boom")
	seen = nil
	err = FirstMatch(oid, func(filter bson.M) error {
		seen = append(seen, filter)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, seen, 1)

	err = FirstMatch("slug-only", func(bson.M) error { return mongo.ErrNoDocuments })
	assert.True(t, IsNotFound(err))
}

func TestEmbeddedStoreAgainstMongo(t *testing.T) {
	client := integrationClient(t)
	store := NewEmbeddedStore[bson.M](client.Collection("embedded_test"), "items")
	ctx := context.Background()

	err := store.Insert(ctx, &bson.M{"id": "cat", "name": "Cat", "items": bson.A{}})
	assert.NoError(t, err)

	_, err = store.PushItem(ctx, "cat", "a", bson.M{"id": "a", "name": "A"})
	assert.NoError(t, err)
	_, err = store.PushItem(ctx, "cat", "a", bson.M{"id": "a", "name": "again"})
	assert.True(t, IsNotFound(err), "duplicate item ids are rejected")

	doc, err := store.ReplaceItem(ctx, "cat", "a", bson.M{"id": "a", "name": "A2"})
	assert.NoError(t, err)
	assert.NotNil(t, doc)

	_, err = store.PullItem(ctx, "cat", "missing")
	assert.True(t, IsNotFound(err))
	_, err = store.PullItem(ctx, "cat", "a")
	assert.NoError(t, err)

	assert.NoError(t, store.Delete(ctx, "cat"))
	assert.True(t, IsNotFound(store.Delete(ctx, "cat")))
}
