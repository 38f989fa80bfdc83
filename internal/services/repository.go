package services

import (
	"context"

	"github.com/studiosite/studiosite-backend/pkg/db/models"
	"github.com/studiosite/studiosite-backend/pkg/pagination"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type listFilter struct {
	Category string
	Status   string
	Tags     []string
	MinPrice *bson.Decimal128
	MaxPrice *bson.Decimal128
	Limit    int
	Cursor   *pagination.Cursor
}

func (f listFilter) query() bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if len(f.Tags) > 0 {
		filter["tags"] = bson.M{"$in": f.Tags}
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["pricing.basePrice"] = price
	}
	return filter
}

type Repository struct {
	coll *mongo.Collection
}

func NewRepository(coll *mongo.Collection) *Repository {
	return &Repository{coll: coll}
}

func (r *Repository) Create(ctx context.Context, s *models.Service) error {
	res, err := r.coll.InsertOne(ctx, s)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		s.ID = id
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Service, error) {
	var s models.Service
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns one page newest first plus the total matching the non-cursor filters.
func (r *Repository) List(ctx context.Context, f listFilter) ([]models.Service, int64, error) {
	base := f.query()
	total, err := r.coll.CountDocuments(ctx, base)
	if err != nil {
		return nil, 0, err
	}

	filter := f.Cursor.After()
	for k, v := range base {
		filter[k] = v
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(pagination.LimitWithBuffer(f.Limit)))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	out := []models.Service{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	res := r.coll.Distinct(ctx, "category", bson.M{})
	if err := res.Err(); err != nil {
		return nil, err
	}
	var out []string
	if err := res.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) Update(ctx context.Context, id bson.ObjectID, fields bson.M) (*models.Service, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var s models.Service
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
