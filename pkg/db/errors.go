package db

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// IsDuplicateKey reports whether err is a unique index violation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return mongo.IsDuplicateKeyError(err)
}

// IsNotFound reports whether err signals that a single-document query matched nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
