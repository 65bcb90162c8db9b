package database

import (
	"context"
	"fmt"
	"time"

	"github.com/mx-space/summarizer/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectTimeout = 10 * time.Second

// DB bundles the mongo client with the database holding the summary records.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
	cfg      config.MongoRuntimeConfig
}

// Connect opens a MongoDB connection and optionally ensures indexes.
func Connect(ctx context.Context, cfg *config.AppConfig, ensureIndexes bool) (*DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(cfg.MongoURI).
		SetAppName("summarizer"))
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	db := &DB{
		Client:   client,
		Database: client.Database(cfg.Mongo.Database),
		cfg:      cfg.Mongo,
	}
	if ensureIndexes {
		if err := db.EnsureIndexes(connectCtx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("index bootstrap failed: %w", err)
		}
	}
	return db, nil
}

// Records returns the summary record store.
func (d *DB) Records() *RecordStore {
	return NewRecordStore(d.Database.Collection(d.cfg.Collection))
}

// Ping checks connectivity to the primary.
func (d *DB) Ping(ctx context.Context) error {
	return d.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (d *DB) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the cache queries rely on.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	coll := d.Database.Collection(d.cfg.Collection)
	if _, err := coll.Indexes().CreateMany(ctx, recordIndexes()); err != nil {
		return fmt.Errorf("create indexes on %s: %w", d.cfg.Collection, err)
	}
	return nil
}

func recordIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "hash", Value: 1}},
			Options: options.Index().SetName("hash_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "normalized_hash", Value: 1}},
			Options: options.Index().SetName("normalized_hash"),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "word_count", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("category_word_count_created_at"),
		},
		{
			Keys:    bson.D{{Key: "normalized_text", Value: "text"}},
			Options: options.Index().SetName("normalized_text_search"),
		},
	}
}
