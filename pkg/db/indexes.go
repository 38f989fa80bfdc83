package db

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/multierr"
)

// caseInsensitive compares strings ignoring case.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type indexSet struct {
	collection string
	models     []mongo.IndexModel
}

func indexPlan() []indexSet {
	return []indexSet{
		{
			collection: CollectionUsers,
			models: []mongo.IndexModel{
				{
					Keys: bson.D{{Key: "firebaseUid", Value: 1}},
					Options: options.Index().
						SetName("uniq_firebase_uid").
						SetUnique(true).
						SetPartialFilterExpression(bson.M{"firebaseUid": bson.M{"$type": "string"}}),
				},
				{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("idx_email")},
				{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, Options: options.Index().SetName("idx_created_desc")},
			},
		},
		{
			collection: CollectionPasswordResetTokens,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "tokenHash", Value: 1}}, Options: options.Index().SetName("uniq_token_hash").SetUnique(true)},
				{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetName("ttl_expires_at").SetExpireAfterSeconds(86400)},
			},
		},
		{
			collection: CollectionShowcaseProducts,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetName("uniq_slug").SetUnique(true)},
			},
		},
		{
			collection: CollectionPricingCategories,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetName("uniq_category_id").SetUnique(true)},
			},
		},
		{
			collection: CollectionProjectCategories,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetName("uniq_category_id").SetUnique(true)},
			},
		},
		{
			collection: CollectionDepartments,
			models: []mongo.IndexModel{
				{
					Keys: bson.D{{Key: "name", Value: 1}},
					Options: options.Index().
						SetName("uniq_department_name_ci").
						SetUnique(true).
						SetCollation(caseInsensitive),
				},
			},
		},
		{
			collection: CollectionTeamMembers,
			models: []mongo.IndexModel{
				{
					Keys: bson.D{{Key: "id", Value: 1}},
					Options: options.Index().
						SetName("uniq_member_id").
						SetUnique(true).
						SetPartialFilterExpression(bson.M{"id": bson.M{"$type": "string"}}),
				},
				{Keys: bson.D{{Key: "department", Value: 1}, {Key: "roleValue", Value: 1}}, Options: options.Index().SetName("idx_department_role")},
			},
		},
		{
			collection: CollectionServices,
			models: []mongo.IndexModel{
				{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_category_created")},
				{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, Options: options.Index().SetName("idx_created_desc")},
			},
		},
	}
}

// EnsureIndexes creates the unique and TTL indexes the application relies on.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	for _, set := range indexPlan() {
		if _, err := c.Collection(set.collection).Indexes().CreateMany(ctx, set.models); err != nil {
			return fmt.Errorf("creating indexes on %s: %w", set.collection, err)
		}
	}
	return nil
}

// IndexReport compares the planned indexes of one collection with what the server has.
type IndexReport struct {
	Collection string
	Present    []string
	Missing    []string
	Extra      []string
}

// IndexStatus lists, per collection, which planned indexes exist and which do not.
// The default _id index is never reported.
func (c *Client) IndexStatus(ctx context.Context) ([]IndexReport, error) {
	plan := indexPlan()
	reports := make([]IndexReport, 0, len(plan))
	for _, set := range plan {
		specs, err := c.Collection(set.collection).Indexes().ListSpecifications(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing indexes on %s: %w", set.collection, err)
		}
		existing := make(map[string]struct{}, len(specs))
		for _, spec := range specs {
			if spec.Name == "_id_" {
				continue
			}
			existing[spec.Name] = struct{}{}
		}
		reports = append(reports, compareIndexes(set, existing))
	}
	return reports, nil
}

func compareIndexes(set indexSet, existing map[string]struct{}) IndexReport {
	report := IndexReport{Collection: set.collection}
	planned := make(map[string]struct{}, len(set.models))
	for _, model := range set.models {
		name := indexName(model)
		planned[name] = struct{}{}
		if _, ok := existing[name]; ok {
			report.Present = append(report.Present, name)
		} else {
			report.Missing = append(report.Missing, name)
		}
	}
	for name := range existing {
		if _, ok := planned[name]; !ok {
			report.Extra = append(report.Extra, name)
		}
	}
	sort.Strings(report.Extra)
	return report
}

// ValidateIndexPlan checks that every planned index is named and that names are
// unique within a collection. It needs no connection.
func ValidateIndexPlan() error {
	return validatePlan(indexPlan())
}

func validatePlan(plan []indexSet) error {
	var err error
	for _, set := range plan {
		seen := make(map[string]struct{}, len(set.models))
		for i, model := range set.models {
			name := indexName(model)
			if name == "" {
				err = multierr.Append(err, fmt.Errorf("%s: index %d has no name", set.collection, i))
				continue
			}
			if _, dup := seen[name]; dup {
				err = multierr.Append(err, fmt.Errorf("%s: duplicate index name %q", set.collection, name))
			}
			seen[name] = struct{}{}
		}
	}
	return err
}

func indexName(model mongo.IndexModel) string {
	if model.Options == nil {
		return ""
	}
	var opts options.IndexOptions
	for _, apply := range model.Options.List() {
		if err := apply(&opts); err != nil {
			return ""
		}
	}
	if opts.Name == nil {
		return ""
	}
	return *opts.Name
}
