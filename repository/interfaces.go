package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"xportconnect/models"
)

// UserRepository defines operations on User documents.
type UserRepository interface {
	// Create inserts u, assigning its ID and timestamps. A taken email yields utils.ErrConflict.
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, up models.ProfileUpdate) (*models.User, error)
}

// ProductFilter narrows product listings. Zero value lists everything.
type ProductFilter struct {
	Exporter   *primitive.ObjectID
	ActiveOnly bool
}

// ProductRepository defines operations on Product documents.
type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	List(ctx context.Context, f ProductFilter) ([]models.Product, error)
	// UpdateOwned and DeleteOwned only match products listed by exporter.
	UpdateOwned(ctx context.Context, id, exporter primitive.ObjectID, up models.ProductUpdate) (*models.Product, error)
	DeleteOwned(ctx context.Context, id, exporter primitive.ObjectID) error
	// ReserveStock atomically decrements available quantity, failing with
	// utils.ErrInsufficientStock rather than going negative.
	ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error
	ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

// OrderFilter selects orders by participant. Exactly one field is normally set.
type OrderFilter struct {
	Buyer    *primitive.ObjectID
	Exporter *primitive.ObjectID
	Shipper  *primitive.ObjectID
}

// OrderRepository defines operations on Order documents.
type OrderRepository interface {
	// Create inserts o with version 1.
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	List(ctx context.Context, f OrderFilter) ([]models.Order, error)
	// UpdateTracking writes o's shipper and tracking info if the stored
	// version still equals o.Version, then bumps o.Version. A stale version
	// yields utils.ErrConflict.
	UpdateTracking(ctx context.Context, o *models.Order) error
}

// Repositories bundles the stores the services depend on.
type Repositories struct {
	Users    UserRepository
	Products ProductRepository
	Orders   OrderRepository
	// Ping checks the backing store is reachable.
	Ping func(ctx context.Context) error
}
