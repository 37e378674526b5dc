package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"xportconnect/models"
	"xportconnect/utils"
)

// orderRepository implements OrderRepository over a Mongo collection.
type orderRepository struct {
	coll *mongo.Collection
}

// NewOrderRepository returns an OrderRepository storing documents in coll.
func NewOrderRepository(coll *mongo.Collection) OrderRepository {
	return &orderRepository{coll: coll}
}

func (r *orderRepository) Create(ctx context.Context, o *models.Order) error {
	now := time.Now().UTC()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	o.Version = 1
	o.CreatedAt, o.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order %w", utils.ErrNotFound)
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &o, nil
}

func (r *orderRepository) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	filter := bson.M{}
	if f.Buyer != nil {
		filter["buyer"] = *f.Buyer
	}
	if f.Exporter != nil {
		filter["exporter"] = *f.Exporter
	}
	if f.Shipper != nil {
		filter["shipper"] = *f.Shipper
	}

	cursor, err := r.coll.Find(ctx, filter, insertionOrder)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) UpdateTracking(ctx context.Context, o *models.Order) error {
	now := time.Now().UTC()
	set := bson.M{
		"tracking_info": o.TrackingInfo,
		"updated_at":    now,
	}
	if o.Shipper != nil {
		set["shipper"] = *o.Shipper
	}
	filter := bson.M{"_id": o.ID, "version": o.Version}
	if o.Version == 0 {
		// Documents written before versioning have no version field.
		filter["version"] = bson.M{"$exists": false}
	}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, o.ID); err != nil {
			return err
		}
		return fmt.Errorf("%w: order was modified concurrently, reload and retry", utils.ErrConflict)
	}
	o.Version++
	o.UpdatedAt = now
	return nil
}
