package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type PlanPrice struct {
	USD *bson.Decimal128 `bson:"USD"`
	BDT *bson.Decimal128 `bson:"BDT"`
}

type ActionCTA struct {
	Text   string `bson:"text"`
	Action string `bson:"action"`
}

type PricingPlan struct {
	ID           string    `bson:"id"`
	Name         string    `bson:"name"`
	Description  string    `bson:"description"`
	Type         string    `bson:"type"`
	Popular      bool      `bson:"popular"`
	Price        PlanPrice `bson:"price"`
	BillingCycle string    `bson:"billingCycle"`
	Features     []string  `bson:"features"`
	CTA          ActionCTA `bson:"cta"`
	Order        int       `bson:"order"`
}

// PricingCategory groups plans; ID is a slug derived from Name.
type PricingCategory struct {
	ObjectID  bson.ObjectID `bson:"_id,omitempty"`
	ID        string        `bson:"id"`
	Name      string        `bson:"name"`
	Order     int           `bson:"order"`
	IsActive  bool          `bson:"isActive"`
	Plans     []PricingPlan `bson:"plans"`
	CreatedBy string        `bson:"createdBy,omitempty"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}
