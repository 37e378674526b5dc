package service

import (
	"context"
	"slices"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"xportconnect/models"
	"xportconnect/repository"
	"xportconnect/utils"
)

// CatalogService manages product listings. Writes are scoped to the listing exporter.
type CatalogService struct {
	products repository.ProductRepository
	users    repository.UserRepository
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(products repository.ProductRepository, users repository.UserRepository) *CatalogService {
	return &CatalogService{products: products, users: users}
}

// ProductInput is the data a listing is created from.
type ProductInput struct {
	Name              string   `json:"name" validate:"required,max=100"`
	Description       string   `json:"description" validate:"max=1000"`
	Category          string   `json:"category" validate:"required"`
	PricePerUnit      float64  `json:"pricePerUnit" validate:"gt=0"`
	Unit              string   `json:"unit" validate:"required"`
	AvailableQuantity int      `json:"availableQuantity" validate:"gte=0"`
	Image             string   `json:"image" validate:"required"`
	OriginCountry     string   `json:"originCountry" validate:"required"`
	Certifications    []string `json:"certifications"`
}

// ProductPatch holds the fields of a listing update. Omitted fields are unchanged.
type ProductPatch struct {
	Name              *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Description       *string  `json:"description" validate:"omitempty,max=1000"`
	Category          *string  `json:"category"`
	PricePerUnit      *float64 `json:"pricePerUnit" validate:"omitempty,gt=0"`
	Unit              *string  `json:"unit" validate:"omitempty,min=1"`
	AvailableQuantity *int     `json:"availableQuantity" validate:"omitempty,gte=0"`
	Image             *string  `json:"image"`
	OriginCountry     *string  `json:"originCountry" validate:"omitempty,min=1"`
	Certifications    []string `json:"certifications"`
	IsActive          *bool    `json:"isActive"`
}

func checkCategory(c string) error {
	if !slices.Contains(models.ProductCategories, c) {
		return utils.NewError(utils.ErrValidation, "category must be one of %v", models.ProductCategories)
	}
	return nil
}

// Create lists a new product for the calling exporter.
func (s *CatalogService) Create(ctx context.Context, caller models.Caller, in ProductInput) (*models.Product, error) {
	if !caller.Is(models.RoleExporter) {
		return nil, utils.NewError(utils.ErrForbidden, "only exporters can list products")
	}
	if err := utils.Validate(in); err != nil {
		return nil, err
	}
	if err := checkCategory(in.Category); err != nil {
		return nil, err
	}

	p := &models.Product{
		Exporter:          caller.ID,
		Name:              in.Name,
		Description:       in.Description,
		Category:          in.Category,
		PricePerUnit:      in.PricePerUnit,
		Unit:              in.Unit,
		AvailableQuantity: in.AvailableQuantity,
		Image:             in.Image,
		OriginCountry:     in.OriginCountry,
		Certifications:    in.Certifications,
		IsActive:          true,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns every active listing with its exporter's public fields.
func (s *CatalogService) List(ctx context.Context) ([]models.ProductListing, error) {
	products, err := s.products.List(ctx, repository.ProductFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	return s.withExporters(ctx, products)
}

// ListOwn returns all of the calling exporter's listings, inactive ones included.
func (s *CatalogService) ListOwn(ctx context.Context, caller models.Caller) ([]models.ProductListing, error) {
	if !caller.Is(models.RoleExporter) {
		return nil, utils.NewError(utils.ErrForbidden, "only exporters have product listings")
	}
	products, err := s.products.List(ctx, repository.ProductFilter{Exporter: &caller.ID})
	if err != nil {
		return nil, err
	}
	return s.withExporters(ctx, products)
}

// Get returns one listing.
func (s *CatalogService) Get(ctx context.Context, id primitive.ObjectID) (*models.ProductListing, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	listings, err := s.withExporters(ctx, []models.Product{*p})
	if err != nil {
		return nil, err
	}
	return &listings[0], nil
}

func (s *CatalogService) withExporters(ctx context.Context, products []models.Product) ([]models.ProductListing, error) {
	ids := make([]primitive.ObjectID, 0, len(products))
	seen := make(map[primitive.ObjectID]bool)
	for _, p := range products {
		if !seen[p.Exporter] {
			seen[p.Exporter] = true
			ids = append(ids, p.Exporter)
		}
	}
	exporters, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.UserSummary, len(exporters))
	for _, u := range exporters {
		byID[u.ID] = u.ToSummary()
	}

	out := make([]models.ProductListing, 0, len(products))
	for _, p := range products {
		out = append(out, models.ProductListing{Product: p, ExporterInfo: byID[p.Exporter]})
	}
	return out, nil
}

// Update edits one of the calling exporter's listings.
func (s *CatalogService) Update(ctx context.Context, caller models.Caller, id primitive.ObjectID, patch ProductPatch) (*models.Product, error) {
	if !caller.Is(models.RoleExporter) {
		return nil, utils.NewError(utils.ErrForbidden, "only exporters can edit products")
	}
	if err := utils.Validate(patch); err != nil {
		return nil, err
	}
	if patch.Category != nil {
		if err := checkCategory(*patch.Category); err != nil {
			return nil, err
		}
	}
	return s.products.UpdateOwned(ctx, id, caller.ID, models.ProductUpdate{
		Name:              patch.Name,
		Description:       patch.Description,
		Category:          patch.Category,
		PricePerUnit:      patch.PricePerUnit,
		Unit:              patch.Unit,
		AvailableQuantity: patch.AvailableQuantity,
		Image:             patch.Image,
		OriginCountry:     patch.OriginCountry,
		Certifications:    patch.Certifications,
		IsActive:          patch.IsActive,
	})
}

// Delete removes one of the calling exporter's listings. Placed orders keep their snapshot totals.
func (s *CatalogService) Delete(ctx context.Context, caller models.Caller, id primitive.ObjectID) error {
	if !caller.Is(models.RoleExporter) {
		return utils.NewError(utils.ErrForbidden, "only exporters can delete products")
	}
	return s.products.DeleteOwned(ctx, id, caller.ID)
}
