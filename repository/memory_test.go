package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"xportconnect/models"
	"xportconnect/utils"
)

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	u := &models.User{Name: "Ada", Email: " Ada@Example.com ", Role: models.RoleShipper}
	require.NoError(t, repo.Create(ctx, u))
	assert.False(t, u.ID.IsZero())
	assert.Equal(t, "ada@example.com", u.Email)

	err := repo.Create(ctx, &models.User{Email: "ADA@example.com"})
	assert.ErrorIs(t, err, utils.ErrConflict)

	got, err := repo.FindByEmail(ctx, "ada@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.FindByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, utils.ErrNotFound)

	buyer := &models.User{Name: "Bo", Email: "bo@example.com", Role: models.RoleBuyer}
	require.NoError(t, repo.Create(ctx, buyer))

	shippers, err := repo.ListByRole(ctx, models.RoleShipper)
	require.NoError(t, err)
	require.Len(t, shippers, 1)
	assert.Equal(t, u.ID, shippers[0].ID)

	both, err := repo.FindByIDs(ctx, []primitive.ObjectID{buyer.ID, u.ID, primitive.NewObjectID()})
	require.NoError(t, err)
	require.Len(t, both, 2)
	assert.Equal(t, u.ID, both[0].ID, "insertion order")

	name := "Ada L."
	updated, err := repo.UpdateProfile(ctx, u.ID, models.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.Name)
	assert.Equal(t, models.RoleShipper, updated.Role)
}

func TestMemoryProducts_OwnershipAndStock(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProductRepository()
	owner := primitive.NewObjectID()

	p := &models.Product{Exporter: owner, Name: "Saffron", PricePerUnit: 10, AvailableQuantity: 5, IsActive: true}
	require.NoError(t, repo.Create(ctx, p))
	hidden := &models.Product{Exporter: owner, Name: "Old stock", IsActive: false}
	require.NoError(t, repo.Create(ctx, hidden))

	active, err := repo.List(ctx, ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 1)
	mine, err := repo.List(ctx, ProductFilter{Exporter: &owner})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	price := 12.5
	_, err = repo.UpdateOwned(ctx, p.ID, primitive.NewObjectID(), models.ProductUpdate{PricePerUnit: &price})
	assert.ErrorIs(t, err, utils.ErrNotFound)
	updated, err := repo.UpdateOwned(ctx, p.ID, owner, models.ProductUpdate{PricePerUnit: &price})
	require.NoError(t, err)
	assert.Equal(t, 12.5, updated.PricePerUnit)

	require.NoError(t, repo.ReserveStock(ctx, p.ID, 3))
	assert.ErrorIs(t, repo.ReserveStock(ctx, p.ID, 3), utils.ErrInsufficientStock)
	assert.ErrorIs(t, repo.ReserveStock(ctx, primitive.NewObjectID(), 1), utils.ErrNotFound)
	require.NoError(t, repo.ReleaseStock(ctx, p.ID, 3))
	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.AvailableQuantity)

	assert.ErrorIs(t, repo.DeleteOwned(ctx, p.ID, primitive.NewObjectID()), utils.ErrNotFound)
	require.NoError(t, repo.DeleteOwned(ctx, p.ID, owner))
	_, err = repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestMemoryOrders_VersionedUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrderRepository()
	buyer, exporter, shipper := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	o := &models.Order{
		Buyer:        buyer,
		Exporter:     exporter,
		Products:     []models.OrderLine{{ProductID: primitive.NewObjectID(), Quantity: 1}},
		TrackingInfo: models.TrackingInfo{Status: models.StatusPending},
	}
	require.NoError(t, repo.Create(ctx, o))
	assert.EqualValues(t, 1, o.Version)

	first, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)

	first.Shipper = &shipper
	first.TrackingInfo = models.TrackingInfo{TrackingNumber: "ABCD1234", Status: models.StatusPending}
	require.NoError(t, repo.UpdateTracking(ctx, first))
	assert.EqualValues(t, 2, first.Version)

	second.TrackingInfo.Status = models.StatusDelivered
	assert.ErrorIs(t, repo.UpdateTracking(ctx, second), utils.ErrConflict)

	stored, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.TrackingInfo.Status)
	assert.True(t, stored.AssignedTo(shipper))

	eta := time.Now().Add(72 * time.Hour).UTC()
	stored.TrackingInfo.EstimatedDelivery = &eta
	require.NoError(t, repo.UpdateTracking(ctx, stored))
	eta = eta.Add(time.Hour) // must not leak into the store
	again, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.NotEqual(t, eta, *again.TrackingInfo.EstimatedDelivery)

	byShipper, err := repo.List(ctx, OrderFilter{Shipper: &shipper})
	require.NoError(t, err)
	assert.Len(t, byShipper, 1)
	byOther, err := repo.List(ctx, OrderFilter{Buyer: &exporter})
	require.NoError(t, err)
	assert.Empty(t, byOther)

	missing := &models.Order{ID: primitive.NewObjectID(), Version: 1}
	assert.ErrorIs(t, repo.UpdateTracking(ctx, missing), utils.ErrNotFound)
}

func TestMemory_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repos := NewMemoryRepositories()
	assert.Error(t, repos.Ping(ctx))
	_, err := repos.Orders.List(ctx, OrderFilter{})
	assert.ErrorIs(t, err, context.Canceled)
}
