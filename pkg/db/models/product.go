package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Product is a catalog item owned by the user who created it.
type Product struct {
	ID          bson.ObjectID   `bson:"_id,omitempty"`
	Name        string          `bson:"name"`
	Description string          `bson:"description"`
	Price       bson.Decimal128 `bson:"price"`
	Category    string          `bson:"category"`
	Stock       int             `bson:"stock"`
	ImageURL    string          `bson:"imageUrl,omitempty"`
	CreatedBy   string          `bson:"createdBy"`
	CreatedAt   time.Time       `bson:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt"`
}
