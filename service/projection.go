package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"xportconnect/models"
	"xportconnect/repository"
)

// Projector resolves the user and product references of orders for display.
type Projector struct {
	users    repository.UserRepository
	products repository.ProductRepository
}

// NewProjector creates a Projector.
func NewProjector(users repository.UserRepository, products repository.ProductRepository) *Projector {
	return &Projector{users: users, products: products}
}

// Project enriches orders with the public fields of their participants and
// a summary of each ordered product. Users and products are loaded
// concurrently. References that no longer resolve are left empty.
func (p *Projector) Project(ctx context.Context, orders []models.Order) ([]models.OrderView, error) {
	userIDs := newIDSet()
	productIDs := newIDSet()
	for _, o := range orders {
		userIDs.add(o.Buyer)
		userIDs.add(o.Exporter)
		if o.Shipper != nil {
			userIDs.add(*o.Shipper)
		}
		for _, l := range o.Products {
			productIDs.add(l.ProductID)
		}
	}

	var (
		users    []models.User
		products []models.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = p.users.FindByIDs(gctx, userIDs.ids)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = p.products.FindByIDs(gctx, productIDs.ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	userByID := make(map[primitive.ObjectID]*models.UserSummary, len(users))
	for _, u := range users {
		userByID[u.ID] = u.ToSummary()
	}
	productByID := make(map[primitive.ObjectID]*models.ProductSummary, len(products))
	for _, pr := range products {
		productByID[pr.ID] = pr.ToSummary()
	}

	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		v := models.OrderView{
			ID:              o.ID,
			Buyer:           userByID[o.Buyer],
			Exporter:        userByID[o.Exporter],
			Products:        make([]models.OrderLineView, 0, len(o.Products)),
			TotalAmount:     o.TotalAmount,
			ShippingAddress: o.ShippingAddress,
			TrackingInfo:    o.TrackingInfo,
			CreatedAt:       o.CreatedAt,
			UpdatedAt:       o.UpdatedAt,
		}
		if o.Shipper != nil {
			v.Shipper = userByID[*o.Shipper]
		}
		if v.TrackingInfo.Status == "" {
			v.TrackingInfo.Status = models.StatusPending
		}
		for _, l := range o.Products {
			v.Products = append(v.Products, models.OrderLineView{Product: productByID[l.ProductID], Quantity: l.Quantity})
		}
		views = append(views, v)
	}
	return views, nil
}

type idSet struct {
	seen map[primitive.ObjectID]bool
	ids  []primitive.ObjectID
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[primitive.ObjectID]bool)}
}

func (s *idSet) add(id primitive.ObjectID) {
	if !s.seen[id] {
		s.seen[id] = true
		s.ids = append(s.ids, id)
	}
}
