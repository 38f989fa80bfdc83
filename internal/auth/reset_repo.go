package auth

import (
	"context"
	"time"

	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ResetTokenRepository persists hashed password reset tokens.
type ResetTokenRepository struct {
	coll *mongo.Collection
}

func NewResetTokenRepository(coll *mongo.Collection) *ResetTokenRepository {
	return &ResetTokenRepository{coll: coll}
}

func (r *ResetTokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	_, err := r.coll.InsertOne(ctx, token)
	return err
}

// Consume marks a matching unused, unexpired token as used in one atomic
// operation. It reports false when no such token exists.
func (r *ResetTokenRepository) Consume(ctx context.Context, email, tokenHash string, now time.Time) (bool, error) {
	filter := bson.M{
		"email":     email,
		"tokenHash": tokenHash,
		"used":      false,
		"expiresAt": bson.M{"$gt": now},
	}
	update := bson.M{"$set": bson.M{"used": true, "usedAt": now}}

	err := r.coll.FindOneAndUpdate(ctx, filter, update).Err()
	if err != nil {
		if db.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Release hands a claimed token back when the password change did not go
// through. It only matches the claim made at claimedAt, so a later successful
// redemption is never undone.
func (r *ResetTokenRepository) Release(ctx context.Context, tokenHash string, claimedAt time.Time) error {
	filter := bson.M{
		"tokenHash": tokenHash,
		"used":      true,
		"usedAt":    claimedAt,
	}
	update := bson.M{
		"$set":   bson.M{"used": false},
		"$unset": bson.M{"usedAt": ""},
	}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}
