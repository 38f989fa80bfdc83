package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiosite/studiosite-backend/pkg/config"
	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	"github.com/studiosite/studiosite-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func integrationResetRepo(t *testing.T) *ResetTokenRepository {
	t.Helper()
	uri := os.Getenv("STUDIOSITE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("STUDIOSITE_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := db.New(ctx, config.MongoConfig{
		URI:            uri,
		Database:       "studiosite_test_" + bson.NewObjectID().Hex(),
		ConnectTimeout: 5 * time.Second,
		MaxPoolSize:    5,
	}, logger.New(logger.Options{ServiceName: "auth-test"}))
	require.NoError(t, err)
	require.NoError(t, client.EnsureIndexes(ctx))
	t.Cleanup(func() {
		_ = client.Database().Drop(context.Background())
		_ = client.Close(context.Background())
	})
	return NewResetTokenRepository(client.Collection(db.CollectionPasswordResetTokens))
}

func TestResetTokenRepositoryReleaseRestoresClaim(t *testing.T) {
	repo := integrationResetRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, repo.Create(ctx, &models.PasswordResetToken{
		Email:     "repo@example.com",
		TokenHash: "hash-1",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}))

	ok, err := repo.Consume(ctx, "repo@example.com", "hash-1", now)
	require.NoError(t, err)
	require.True(t, ok)

	// a release for some other claim time must not reopen the token
	require.NoError(t, repo.Release(ctx, "hash-1", now.Add(-time.Second)))
	ok, err = repo.Consume(ctx, "repo@example.com", "hash-1", now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Release(ctx, "hash-1", now))
	ok, err = repo.Consume(ctx, "repo@example.com", "hash-1", now.Add(2*time.Second))
	require.NoError(t, err)
	assert.True(t, ok)
}
