package controllers

import (
	"net/http"
	"time"

	"xportconnect/middleware"
	"xportconnect/service"
	"xportconnect/utils"
)

// ProductController handles catalog requests
type ProductController struct {
	base
	catalog *service.CatalogService
}

// NewProductController creates a new ProductController
func NewProductController(catalog *service.CatalogService, rs utils.Responder, timeout time.Duration) *ProductController {
	return &ProductController{base: base{rs: rs, timeout: timeout}, catalog: catalog}
}

// GetProducts lists active products, or the caller's own with ?exporter=true
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := pc.withTimeout(r)
	defer cancel()

	if r.URL.Query().Get("exporter") == "true" {
		caller, ok := middleware.CallerFrom(r.Context())
		if !ok {
			pc.rs.Error(w, r, utils.NewError(utils.ErrUnauthorized, "authentication required to list your products"))
			return
		}
		products, err := pc.catalog.ListOwn(ctx, caller)
		if err != nil {
			pc.rs.Error(w, r, err)
			return
		}
		pc.rs.JSON(w, http.StatusOK, "", products)
		return
	}

	products, err := pc.catalog.List(ctx)
	if err != nil {
		pc.rs.Error(w, r, err)
		return
	}
	pc.rs.JSON(w, http.StatusOK, "", products)
}

// GetProductByID returns a single product
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pc.rs.Error(w, r, err)
		return
	}

	ctx, cancel := pc.withTimeout(r)
	defer cancel()
	product, err := pc.catalog.Get(ctx, id)
	if err != nil {
		pc.rs.Error(w, r, err)
		return
	}
	pc.rs.JSON(w, http.StatusOK, "", product)
}

// CreateProduct lists a new product for the calling exporter
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	caller, ok := pc.caller(w, r)
	if !ok {
		return
	}
	var in service.ProductInput
	if err := decode(w, r, &in); err != nil {
		pc.rs.Error(w, r, err)
		return
	}

	ctx, cancel := pc.withTimeout(r)
	defer cancel()
	product, err := pc.catalog.Create(ctx, caller, in)
	if err != nil {
		pc.rs.Error(w, r, err)
		return
	}
	pc.rs.JSON(w, http.StatusCreated, "product created", product)
}

// UpdateProduct edits one of the caller's products
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	caller, ok := pc.caller(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		pc.rs.Error(w, r, err)
		return
	}
	var patch service.ProductPatch
	if err := decode(w, r, &patch); err != nil {
		pc.rs.Error(w, r, err)
		return
	}

	ctx, cancel := pc.withTimeout(r)
	defer cancel()
	product, err := pc.catalog.Update(ctx, caller, id, patch)
	if err != nil {
		pc.rs.Error(w, r, err)
		return
	}
	pc.rs.JSON(w, http.StatusOK, "product updated", product)
}

// DeleteProduct removes one of the caller's products
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	caller, ok := pc.caller(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		pc.rs.Error(w, r, err)
		return
	}

	ctx, cancel := pc.withTimeout(r)
	defer cancel()
	if err := pc.catalog.Delete(ctx, caller, id); err != nil {
		pc.rs.Error(w, r, err)
		return
	}
	pc.rs.JSON(w, http.StatusOK, "product deleted", nil)
}
