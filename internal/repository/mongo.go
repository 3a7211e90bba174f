package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Evolvus/evolvus-application/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

type Config struct {
	// URL is the store connection string, e.g. mongodb://host/platform.
	URL      string
	Database string
}

type Connection struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens the store connection and verifies it with a ping.
func Connect(ctx context.Context, cfg Config) (*Connection, error) {
	if cfg.URL == "" || cfg.Database == "" {
		return nil, fmt.Errorf("connect: url and database are required: %w", domain.ErrInvalidArgument)
	}
	clientOptions := options.Client().ApplyURI(cfg.URL)
	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return &Connection{client: client, db: client.Database(cfg.Database)}, nil
}

func (c *Connection) Database() *mongo.Database {
	return c.db
}

func (c *Connection) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// EnsureUniqueIndex creates the unique index on a collection's business
// code field. Uniqueness is enforced here, at the store, so racing
// saves with the same code are resolved by the index rejecting the
// second one.
func (c *Connection) EnsureUniqueIndex(ctx context.Context, collection, field string) error {
	if field == "" {
		return nil
	}
	_, err := c.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("error creating unique index on %s.%s: %w", collection, field, err)
	}
	return nil
}
