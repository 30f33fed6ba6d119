// Package store is the MongoDB data access layer for the GoodBooks dataset.
package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	colBooks    = "books"
	colRatings  = "ratings"
	colTags     = "tags"
	colBookTags = "book_tags"
	colToRead   = "to_read"
)

const connectTimeout = 10 * time.Second

// Store provides document data access.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials mongo and verifies the connection with a ping.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("unable to ping mongo: %w", err)
	}
	return &Store{client: client, db: client.Database(dbName)}, nil
}

// Ping answers whether the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close tears down the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes provisions the unique, join and sort indexes the API
// depends on. Safe to re-run.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		colBooks: {
			{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "authors", Value: "text"}}},
			{Keys: bson.D{{Key: "average_rating", Value: -1}}},
			{Keys: bson.D{{Key: "book_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "goodreads_book_id", Value: 1}}},
		},
		colRatings: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "book_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "book_id", Value: 1}}},
		},
		colTags: {
			{Keys: bson.D{{Key: "tag_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "tag_name", Value: 1}}},
		},
		colBookTags: {
			{Keys: bson.D{{Key: "goodreads_book_id", Value: 1}, {Key: "tag_id", Value: 1}}, Options: unique},
		},
		colToRead: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "book_id", Value: 1}}, Options: unique},
		},
	}

	for col, models := range specs {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("unable to create %s indexes: %w", col, err)
		}
	}
	return nil
}
