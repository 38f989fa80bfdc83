package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Location struct {
	City    string `bson:"city"`
	State   string `bson:"state"`
	Country string `bson:"country"`
}

type SocialLinks struct {
	LinkedIn string `bson:"linkedin,omitempty"`
	Twitter  string `bson:"twitter,omitempty"`
	Email    string `bson:"email,omitempty"`
	GitHub   string `bson:"github,omitempty"`
}

// TeamMember is a public team directory entry. RoleValue orders members by seniority.
type TeamMember struct {
	ObjectID     bson.ObjectID `bson:"_id,omitempty"`
	ID           string        `bson:"id"`
	Name         string        `bson:"name"`
	Role         string        `bson:"role"`
	RoleValue    int           `bson:"roleValue"`
	Department   string        `bson:"department"`
	ProfileImage string        `bson:"profileImage"`
	Bio          string        `bson:"bio"`
	Location     Location      `bson:"location"`
	JoinedDate   string        `bson:"joinedDate"`
	Skills       []string      `bson:"skills"`
	SocialLinks  SocialLinks   `bson:"socialLinks"`
	Status       string        `bson:"status"`
	CreatedBy    string        `bson:"createdBy,omitempty"`
	CreatedAt    time.Time     `bson:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt"`
}

type Department struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Name        string        `bson:"name"`
	Description string        `bson:"description,omitempty"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`
}
