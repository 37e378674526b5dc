package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"xportconnect/utils"
)

func TestCatalog_CreateAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.addProduct(t, f.exporter, 12.5, 40)
	assert.True(t, p.IsActive)
	assert.Equal(t, f.exporter.ID, p.Exporter)

	hidden := f.addProduct(t, f.exporter, 3, 1)
	off := false
	_, err := f.catalog.Update(ctx, f.exporter, hidden.ID, ProductPatch{IsActive: &off})
	require.NoError(t, err)

	public, err := f.catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, p.ID, public[0].ID)
	require.NotNil(t, public[0].ExporterInfo)
	assert.Equal(t, "Eli Exporter Ltd", public[0].ExporterInfo.CompanyName)

	own, err := f.catalog.ListOwn(ctx, f.exporter)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	none, err := f.catalog.ListOwn(ctx, f.otherExporter)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.catalog.ListOwn(ctx, f.buyer)
	assert.ErrorIs(t, err, utils.ErrForbidden)

	got, err := f.catalog.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Basmati Rice", got.Name)

	_, err = f.catalog.Get(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestCatalog_CreateRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	valid := ProductInput{
		Name: "Saffron", Category: "Spices", PricePerUnit: 4, Unit: "g",
		AvailableQuantity: 10, Image: "https://img.example.com/s.png", OriginCountry: "Iran",
	}
	_, err := f.catalog.Create(ctx, f.buyer, valid)
	assert.ErrorIs(t, err, utils.ErrForbidden)

	bad := valid
	bad.Category = "Gadgets"
	_, err = f.catalog.Create(ctx, f.exporter, bad)
	assert.ErrorIs(t, err, utils.ErrValidation)

	bad = valid
	bad.PricePerUnit = 0
	_, err = f.catalog.Create(ctx, f.exporter, bad)
	assert.ErrorIs(t, err, utils.ErrValidation)

	bad = valid
	bad.AvailableQuantity = -1
	_, err = f.catalog.Create(ctx, f.exporter, bad)
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestCatalog_WritesAreOwnerScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, f.exporter, 10, 10)

	price := 11.0
	_, err := f.catalog.Update(ctx, f.otherExporter, p.ID, ProductPatch{PricePerUnit: &price})
	assert.ErrorIs(t, err, utils.ErrNotFound)
	assert.ErrorIs(t, f.catalog.Delete(ctx, f.otherExporter, p.ID), utils.ErrNotFound)
	assert.ErrorIs(t, f.catalog.Delete(ctx, f.buyer, p.ID), utils.ErrForbidden)

	updated, err := f.catalog.Update(ctx, f.exporter, p.ID, ProductPatch{PricePerUnit: &price})
	require.NoError(t, err)
	assert.Equal(t, 11.0, updated.PricePerUnit)

	category := "Toys"
	_, err = f.catalog.Update(ctx, f.exporter, p.ID, ProductPatch{Category: &category})
	assert.ErrorIs(t, err, utils.ErrValidation)

	require.NoError(t, f.catalog.Delete(ctx, f.exporter, p.ID))
	_, err = f.catalog.Get(ctx, p.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}
