package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ServiceImages struct {
	Thumbnail string   `bson:"thumbnail"`
	Gallery   []string `bson:"gallery"`
}

type ServiceLinks struct {
	LiveDemo    string `bson:"liveDemo,omitempty"`
	YoutubeDemo string `bson:"youtubeDemo,omitempty"`
	GithubRepo  string `bson:"githubRepo,omitempty"`
}

type ServicePricing struct {
	BasePrice bson.Decimal128 `bson:"basePrice"`
	Currency  string          `bson:"currency"`
}

// ServiceRequirements flags which intake fields a client must provide.
type ServiceRequirements struct {
	BusinessName      bool `bson:"businessName"`
	BusinessType      bool `bson:"businessType"`
	PagesCount        bool `bson:"pagesCount"`
	ContentProvided   bool `bson:"contentProvided"`
	ReferenceWebsites bool `bson:"referenceWebsites"`
	DomainHosting     bool `bson:"domainHosting"`
}

type Service struct {
	ID               bson.ObjectID       `bson:"_id,omitempty"`
	Title            string              `bson:"title"`
	ShortDescription string              `bson:"shortDescription"`
	Category         string              `bson:"category"`
	Tags             []string            `bson:"tags"`
	Images           ServiceImages       `bson:"images"`
	Links            ServiceLinks        `bson:"links"`
	Pricing          ServicePricing      `bson:"pricing"`
	DeliveryTimeDays int                 `bson:"deliveryTimeDays"`
	Features         []string            `bson:"features"`
	Technologies     []string            `bson:"technologies"`
	Requirements     ServiceRequirements `bson:"requirements"`
	Status           string              `bson:"status"`
	CreatedBy        string              `bson:"createdBy,omitempty"`
	CreatedAt        time.Time           `bson:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt"`
}
