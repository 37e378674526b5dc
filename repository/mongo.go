package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	usersCollection    = "users"
	productsCollection = "products"
	ordersCollection   = "orders"
)

// NewMongoRepositories returns repositories backed by the named database.
func NewMongoRepositories(client *mongo.Client, dbName string) *Repositories {
	db := client.Database(dbName)
	return &Repositories{
		Users:    NewUserRepository(db.Collection(usersCollection)),
		Products: NewProductRepository(db.Collection(productsCollection)),
		Orders:   NewOrderRepository(db.Collection(ordersCollection)),
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
	}
}

// EnsureIndexes creates the indexes the queries rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "exporter", Value: 1}}},
			{Keys: bson.D{{Key: "is_active", Value: 1}}},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "buyer", Value: 1}}},
			{Keys: bson.D{{Key: "exporter", Value: 1}}},
			{Keys: bson.D{{Key: "shipper", Value: 1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// insertionOrder sorts by ObjectID, whose leading bytes are the creation time.
var insertionOrder = options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
