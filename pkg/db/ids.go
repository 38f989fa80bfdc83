package db

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ParseObjectID returns the ObjectID for a 24-character hex string. ok is false
// for anything that is not a syntactically valid ObjectID.
func ParseObjectID(value string) (bson.ObjectID, bool) {
	value = strings.TrimSpace(value)
	if len(value) != 24 {
		return bson.NilObjectID, false
	}
	id, err := bson.ObjectIDFromHex(value)
	if err != nil {
		return bson.NilObjectID, false
	}
	return id, true
}

// IDFilter builds a filter that matches a document either by a string field
// (such as a slug or external id) or, when value is a valid ObjectID, by _id.
func IDFilter(field, value string) bson.M {
	if oid, ok := ParseObjectID(value); ok {
		return bson.M{"$or": bson.A{
			bson.M{field: value},
			bson.M{"_id": oid},
		}}
	}
	return bson.M{field: value}
}
