package team

import (
	"context"
	"regexp"

	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type memberFilter struct {
	Department      string
	DepartmentMatch bool
	Status          string
	Role            string
	Skills          []string
}

func (f memberFilter) query() bson.M {
	filter := bson.M{}
	if f.Department != "" {
		if f.DepartmentMatch {
			filter["department"] = bson.Regex{Pattern: regexp.QuoteMeta(f.Department), Options: "i"}
		} else {
			filter["department"] = f.Department
		}
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Role != "" {
		filter["role"] = bson.Regex{Pattern: regexp.QuoteMeta(f.Role), Options: "i"}
	}
	if len(f.Skills) > 0 {
		filter["skills"] = bson.M{"$in": f.Skills}
	}
	return filter
}

type page struct {
	Sort  bson.D
	Skip  int64
	Limit int64
}

// MemberRepository persists team members addressed by slug id or _id.
type MemberRepository struct {
	coll *mongo.Collection
}

func NewMemberRepository(coll *mongo.Collection) *MemberRepository {
	return &MemberRepository{coll: coll}
}

func (r *MemberRepository) Create(ctx context.Context, m *models.TeamMember) error {
	res, err := r.coll.InsertOne(ctx, m)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		m.ObjectID = id
	}
	return nil
}

func (r *MemberRepository) List(ctx context.Context, f memberFilter, p page) ([]models.TeamMember, int64, error) {
	filter := f.query()
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(p.Sort)
	if p.Skip > 0 {
		opts.SetSkip(p.Skip)
	}
	if p.Limit > 0 {
		opts.SetLimit(p.Limit)
	}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	out := []models.TeamMember{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *MemberRepository) FindByKey(ctx context.Context, key string) (*models.TeamMember, error) {
	var m models.TeamMember
	err := db.FirstMatch(key, func(filter bson.M) error {
		return r.coll.FindOne(ctx, filter).Decode(&m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) Update(ctx context.Context, key string, fields bson.M) (*models.TeamMember, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m models.TeamMember
	err := db.FirstMatch(key, func(filter bson.M) error {
		return r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": fields}, opts).Decode(&m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) Delete(ctx context.Context, key string) error {
	return db.FirstMatch(key, func(filter bson.M) error {
		res, err := r.coll.DeleteOne(ctx, filter)
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return mongo.ErrNoDocuments
		}
		return nil
	})
}

// CountInDepartment counts members whose department equals name ignoring case.
func (r *MemberRepository) CountInDepartment(ctx context.Context, name string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{
		"department": bson.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"},
	})
}

type DepartmentRepository struct {
	coll *mongo.Collection
}

func NewDepartmentRepository(coll *mongo.Collection) *DepartmentRepository {
	return &DepartmentRepository{coll: coll}
}

func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Department{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts d; the case-insensitive unique index on name rejects duplicates.
func (r *DepartmentRepository) Create(ctx context.Context, d *models.Department) error {
	res, err := r.coll.InsertOne(ctx, d)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		d.ID = id
	}
	return nil
}

func (r *DepartmentRepository) DeleteByName(ctx context.Context, name string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{
		"name": bson.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"},
	})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
