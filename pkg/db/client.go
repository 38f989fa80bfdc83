package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/studiosite/studiosite-backend/pkg/config"
	"github.com/studiosite/studiosite-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Collection names.
const (
	CollectionUsers               = "users"
	CollectionPasswordResetTokens = "passwordResetTokens"
	CollectionProducts            = "products"
	CollectionShowcaseProducts    = "productsModule"
	CollectionPricingCategories   = "pricingCategories"
	CollectionProjectCategories   = "projectCategories"
	CollectionServices            = "services"
	CollectionTeamMembers         = "teamMembers"
	CollectionDepartments         = "departments"
)

// Client wraps the shared MongoDB connection pool and the application database.
type Client struct {
	conn *mongo.Client
	db   *mongo.Database
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New connects to MongoDB using the provided configuration and verifies the primary is reachable.
func New(ctx context.Context, cfg config.MongoConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.URI) == "" {
		return nil, errors.New("mongo uri is required")
	}
	if strings.TrimSpace(cfg.Database) == "" {
		return nil, errors.New("mongo database is required")
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
		opts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	conn, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}

	client := &Client{conn: conn, db: conn.Database(cfg.Database)}
	if err := client.Ping(ctx); err != nil {
		_ = conn.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "database connection established")
	}

	return client, nil
}

// Database returns the application database handle.
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Collection returns a handle for the named collection.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// Ping verifies the primary is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.conn == nil {
		return errors.New("mongo client not initialized")
	}
	return c.conn.Ping(ctx, readpref.Primary())
}

// Close disconnects the pooled connections.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Disconnect(ctx)
}
