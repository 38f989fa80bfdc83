package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Project struct {
	ID          string   `bson:"id"`
	Title       string   `bson:"title"`
	Description string   `bson:"description"`
	Tags        []string `bson:"tags"`
	Thumbnail   string   `bson:"thumbnail"`
	PreviewURL  string   `bson:"previewUrl,omitempty"`
	IsFeatured  bool     `bson:"isFeatured"`
	Order       int      `bson:"order"`
}

type ProjectCategory struct {
	ObjectID    bson.ObjectID `bson:"_id,omitempty"`
	ID          string        `bson:"id"`
	Name        string        `bson:"name"`
	Description string        `bson:"description,omitempty"`
	Order       int           `bson:"order"`
	IsActive    bool          `bson:"isActive"`
	Projects    []Project     `bson:"projects"`
	CreatedBy   string        `bson:"createdBy,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`
}
