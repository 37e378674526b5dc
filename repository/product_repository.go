package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"xportconnect/models"
	"xportconnect/utils"
)

// productRepository implements ProductRepository over a Mongo collection.
type productRepository struct {
	coll *mongo.Collection
}

// NewProductRepository returns a ProductRepository storing documents in coll.
func NewProductRepository(coll *mongo.Collection) ProductRepository {
	return &productRepository{coll: coll}
}

func (r *productRepository) Create(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt, p.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %s %w", id.Hex(), utils.ErrNotFound)
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *productRepository) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	filter := bson.M{}
	if f.Exporter != nil {
		filter["exporter"] = *f.Exporter
	}
	if f.ActiveOnly {
		filter["is_active"] = true
	}
	return r.find(ctx, filter)
}

func (r *productRepository) find(ctx context.Context, filter bson.M) ([]models.Product, error) {
	cursor, err := r.coll.Find(ctx, filter, insertionOrder)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (r *productRepository) UpdateOwned(ctx context.Context, id, exporter primitive.ObjectID, up models.ProductUpdate) (*models.Product, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if up.Name != nil {
		set["name"] = *up.Name
	}
	if up.Description != nil {
		set["description"] = *up.Description
	}
	if up.Category != nil {
		set["category"] = *up.Category
	}
	if up.PricePerUnit != nil {
		set["price_per_unit"] = *up.PricePerUnit
	}
	if up.Unit != nil {
		set["unit"] = *up.Unit
	}
	if up.AvailableQuantity != nil {
		set["available_quantity"] = *up.AvailableQuantity
	}
	if up.Image != nil {
		set["image"] = *up.Image
	}
	if up.OriginCountry != nil {
		set["origin_country"] = *up.OriginCountry
	}
	if up.Certifications != nil {
		set["certifications"] = up.Certifications
	}
	if up.IsActive != nil {
		set["is_active"] = *up.IsActive
	}

	var p models.Product
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "exporter": exporter}, bson.M{"$set": set}, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product %w or not authorized", utils.ErrNotFound)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return &p, nil
}

func (r *productRepository) DeleteOwned(ctx context.Context, id, exporter primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "exporter": exporter})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("product %w or not authorized", utils.ErrNotFound)
	}
	return nil
}

func (r *productRepository) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	filter := bson.M{"_id": id, "available_quantity": bson.M{"$gte": qty}}
	update := bson.M{
		"$inc": bson.M{"available_quantity": -qty},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	if res.MatchedCount == 0 {
		// Tell a missing product apart from a short one.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w for product %s", utils.ErrInsufficientStock, id.Hex())
	}
	return nil
}

func (r *productRepository) ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	update := bson.M{
		"$inc": bson.M{"available_quantity": qty},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	return nil
}
