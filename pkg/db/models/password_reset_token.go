package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PasswordResetToken stores only the SHA-256 of the emailed token.
type PasswordResetToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Email     string        `bson:"email"`
	TokenHash string        `bson:"tokenHash"`
	ExpiresAt time.Time     `bson:"expiresAt"`
	Used      bool          `bson:"used"`
	UsedAt    *time.Time    `bson:"usedAt,omitempty"`
	CreatedAt time.Time     `bson:"createdAt"`
}
