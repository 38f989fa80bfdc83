package showcase

import (
	"context"

	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Repository persists showcase products.
type Repository struct {
	coll *mongo.Collection
}

func NewRepository(coll *mongo.Collection) *Repository {
	return &Repository{coll: coll}
}

func (r *Repository) Create(ctx context.Context, p *models.ShowcaseProduct) error {
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		p.ID = id
	}
	return nil
}

// List joins the posting user and sorts by order asc, createdAt desc.
func (r *Repository) List(ctx context.Context, status string) ([]listedProduct, error) {
	pipeline := mongo.Pipeline{}
	if status != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"status": status}}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         db.CollectionUsers,
			"localField":   "postedBy",
			"foreignField": "_id",
			"as":           "poster",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"poster": bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$poster", 0}}, nil}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: -1}}}},
	)

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var out []listedProduct
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) Update(ctx context.Context, id bson.ObjectID, fields bson.M) (*models.ShowcaseProduct, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.ShowcaseProduct
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
