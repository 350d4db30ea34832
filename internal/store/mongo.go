// Package store persists the hierarchical conversation records in MongoDB.
package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection is the slice of mongo.Collection the record store needs.
// Narrowing it here lets tests substitute in-memory fakes.
type Collection interface {
	InsertOne(ctx context.Context, doc any) error
	FindOne(ctx context.Context, filter any, out any) error
	FindAll(ctx context.Context, filter any, opts *options.FindOptions, out any) error
	UpdateOne(ctx context.Context, filter, update any) (matched int64, err error)
	DeleteOne(ctx context.Context, filter any) (deleted int64, err error)
	DeleteMany(ctx context.Context, filter any) (deleted int64, err error)
	CountDocuments(ctx context.Context, filter any) (int64, error)
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

type mongoCollection struct {
	coll *mongo.Collection
}

// WrapCollection adapts a driver collection to the Collection interface.
func WrapCollection(coll *mongo.Collection) Collection {
	return &mongoCollection{coll: coll}
}

func (m *mongoCollection) InsertOne(ctx context.Context, doc any) error {
	_, err := m.coll.InsertOne(ctx, doc)
	return err
}

func (m *mongoCollection) FindOne(ctx context.Context, filter any, out any) error {
	err := m.coll.FindOne(ctx, filter).Decode(out)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	return err
}

func (m *mongoCollection) FindAll(ctx context.Context, filter any, opts *options.FindOptions, out any) error {
	cursor, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func (m *mongoCollection) UpdateOne(ctx context.Context, filter, update any) (int64, error) {
	res, err := m.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (m *mongoCollection) DeleteOne(ctx context.Context, filter any) (int64, error) {
	res, err := m.coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *mongoCollection) DeleteMany(ctx context.Context, filter any) (int64, error) {
	res, err := m.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *mongoCollection) CountDocuments(ctx context.Context, filter any) (int64, error) {
	return m.coll.CountDocuments(ctx, filter)
}
