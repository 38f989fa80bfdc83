package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is the local projection of an identity-provider account.
type User struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	FirebaseUID   string        `bson:"firebaseUid,omitempty"`
	Email         string        `bson:"email"`
	DisplayName   string        `bson:"displayName,omitempty"`
	PhoneNumber   string        `bson:"phoneNumber,omitempty"`
	Address       string        `bson:"address,omitempty"`
	PhotoURL      string        `bson:"photoURL,omitempty"`
	Provider      string        `bson:"provider,omitempty"`
	Role          string        `bson:"role,omitempty"`
	Status        string        `bson:"status,omitempty"`
	TermsAccepted bool          `bson:"termsAccepted"`
	CreatedAt     time.Time     `bson:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt"`
}
