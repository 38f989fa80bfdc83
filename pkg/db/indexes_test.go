package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func TestIndexPlanIsValid(t *testing.T) {
	require.NoError(t, ValidateIndexPlan())
}

func TestValidatePlanReportsProblems(t *testing.T) {
	plan := []indexSet{{
		collection: "widgets",
		models: []mongo.IndexModel{
			{Keys: bson.D{{Key: "a", Value: 1}}, Options: options.Index().SetName("idx_a")},
			{Keys: bson.D{{Key: "b", Value: 1}}, Options: options.Index().SetName("idx_a")},
			{Keys: bson.D{{Key: "c", Value: 1}}},
		},
	}}

	err := validatePlan(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate index name "idx_a"`)
	assert.Contains(t, err.Error(), "index 2 has no name")
}

func TestCompareIndexes(t *testing.T) {
	set := indexSet{
		collection: "widgets",
		models: []mongo.IndexModel{
			{Keys: bson.D{{Key: "a", Value: 1}}, Options: options.Index().SetName("idx_a")},
			{Keys: bson.D{{Key: "b", Value: 1}}, Options: options.Index().SetName("idx_b")},
		},
	}
	existing := map[string]struct{}{"idx_a": {}, "legacy_z": {}, "legacy_y": {}}

	report := compareIndexes(set, existing)
	assert.Equal(t, "widgets", report.Collection)
	assert.Equal(t, []string{"idx_a"}, report.Present)
	assert.Equal(t, []string{"idx_b"}, report.Missing)
	assert.Equal(t, []string{"legacy_y", "legacy_z"}, report.Extra)
}

func TestIndexStatusAfterEnsure(t *testing.T) {
	client := integrationClient(t)
	ctx := t.Context()

	require.NoError(t, client.EnsureIndexes(ctx))
	reports, err := client.IndexStatus(ctx)
	require.NoError(t, err)
	require.Len(t, reports, len(indexPlan()))
	for _, r := range reports {
		assert.Empty(t, r.Missing, r.Collection)
		assert.NotEmpty(t, r.Present, r.Collection)
	}
}
