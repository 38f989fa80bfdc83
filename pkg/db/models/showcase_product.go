package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Image struct {
	URL string `bson:"url"`
	Alt string `bson:"alt"`
}

type Badge struct {
	Label string `bson:"label"`
	Color string `bson:"color"`
}

type Highlight struct {
	Label string `bson:"label"`
	Value string `bson:"value"`
}

type LinkCTA struct {
	Text string `bson:"text"`
	URL  string `bson:"url"`
}

type Theme struct {
	GradientFrom string `bson:"gradientFrom"`
	GradientTo   string `bson:"gradientTo"`
}

// ShowcaseProduct is a marketing page entry for a product the studio builds.
type ShowcaseProduct struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Slug        string        `bson:"slug"`
	Title       string        `bson:"title"`
	Tagline     string        `bson:"tagline"`
	Description string        `bson:"description"`
	CoverImage  Image         `bson:"coverImage"`
	Badge       *Badge        `bson:"badge,omitempty"`
	LiveLink    string        `bson:"liveLink,omitempty"`
	RepoLink    string        `bson:"repoLink,omitempty"`
	Highlights  []Highlight   `bson:"highlights"`
	Features    []string      `bson:"features"`
	CTA         LinkCTA       `bson:"cta"`
	Theme       Theme         `bson:"theme"`
	Status      string        `bson:"status"`
	Order       int           `bson:"order"`
	PostedBy    bson.ObjectID `bson:"postedBy,omitempty"`
	PostedByUID string        `bson:"postedByUid,omitempty"`
	CreatedBy   string        `bson:"createdBy,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`
}
