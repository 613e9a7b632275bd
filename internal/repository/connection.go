package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	appName         = "storefront"
	maxCartPoolSize = 20
	pingTimeout     = 5 * time.Second
)

// OpenCartDatabase connects to MongoDB and returns the database that holds
// saved carts. Writes are acknowledged by a majority.
func OpenCartDatabase(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetAppName(appName).
		SetMaxPoolSize(maxCartPoolSize).
		SetServerSelectionTimeout(pingTimeout).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cart database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("cart database unreachable: %w", err)
	}

	return client.Database(database, options.Database().SetWriteConcern(writeconcern.Majority())), nil
}

// CloseCartDatabase disconnects the client behind db.
func CloseCartDatabase(ctx context.Context, db *mongo.Database) error {
	if err := db.Client().Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to close cart database: %w", err)
	}
	return nil
}
