package users

import (
	"context"
	"errors"
	"time"

	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	"github.com/studiosite/studiosite-backend/pkg/enums"
	"github.com/studiosite/studiosite-backend/pkg/pagination"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Repository exposes user persistence backed by the users collection.
type Repository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewRepository constructs a users repo bound to the provided collection.
func NewRepository(coll *mongo.Collection) *Repository {
	return &Repository{coll: coll, now: time.Now}
}

// FindByObjectID loads a user by database id.
func (r *Repository) FindByObjectID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByFirebaseUID loads a user by external id.
func (r *Repository) FindByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"firebaseUid": uid})
}

// FindByEmail returns the most recently created user with the given email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"email": email}, opts).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert creates or refreshes the local projection for an external identity.
// created reports whether a new document was inserted.
func (r *Repository) Upsert(ctx context.Context, p Projection) (*models.User, bool, error) {
	now := r.now().UTC()

	set := bson.M{"updatedAt": now}
	if p.Email != "" {
		set["email"] = p.Email
	}
	if p.DisplayName != "" {
		set["displayName"] = p.DisplayName
	}
	if p.PhoneNumber != "" {
		set["phoneNumber"] = p.PhoneNumber
	}
	if p.Address != "" {
		set["address"] = p.Address
	}
	if p.PhotoURL != "" {
		set["photoURL"] = p.PhotoURL
	}
	if p.Provider != "" {
		set["provider"] = p.Provider
	}
	if p.TermsAccepted != nil {
		set["termsAccepted"] = *p.TermsAccepted
	}

	role := p.Role
	if !role.IsValid() {
		role = enums.RoleUser
	}
	setOnInsert := bson.M{
		"firebaseUid": p.FirebaseUID,
		"status":      enums.UserStatusActive.String(),
		"createdAt":   now,
	}
	if p.AssignRole && p.Role.IsValid() {
		set["role"] = role.String()
	} else {
		setOnInsert["role"] = role.String()
	}
	if p.TermsAccepted == nil {
		setOnInsert["termsAccepted"] = false
	}

	update := bson.M{"$set": set, "$setOnInsert": setOnInsert}
	filter := bson.M{"firebaseUid": p.FirebaseUID}

	res, err := r.coll.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil && db.IsDuplicateKey(err) {
		// A concurrent upsert inserted first; retry as a plain update.
		res, err = r.coll.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	}
	if err != nil {
		return nil, false, err
	}

	user, err := r.FindByFirebaseUID(ctx, p.FirebaseUID)
	if err != nil {
		return nil, false, err
	}
	return user, res.UpsertedCount > 0, nil
}

// List returns users sorted by createdAt desc, _id desc.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.User, error) {
	filter := f.Cursor.After()
	if f.Status != "" {
		filter["status"] = f.Status.String()
	}
	if f.Role != "" {
		filter["role"] = f.Role.String()
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(pagination.LimitWithBuffer(f.Limit)))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies the given fields and returns the updated document.
func (r *Repository) Update(ctx context.Context, id bson.ObjectID, fields bson.M) (*models.User, error) {
	if len(fields) == 0 {
		return nil, errors.New("no fields to update")
	}
	fields["updatedAt"] = r.now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes a user by database id; deleted is false when nothing matched.
func (r *Repository) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
