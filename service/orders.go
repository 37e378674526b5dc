package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"xportconnect/events"
	"xportconnect/models"
	"xportconnect/repository"
	"xportconnect/utils"
)

// OrderService creates orders and moves them through their shipping lifecycle.
type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	users     repository.UserRepository
	publisher events.Publisher

	// trackingNumber is swapped out in tests.
	trackingNumber func(orderID primitive.ObjectID, previous string) (string, error)
}

// NewOrderService creates an OrderService. A nil publisher drops events.
func NewOrderService(repos repository.Repositories, publisher events.Publisher) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderService{
		orders:         repos.Orders,
		products:       repos.Products,
		users:          repos.Users,
		publisher:      publisher,
		trackingNumber: utils.NextTrackingNumber,
	}
}

// LineInput is one requested product and quantity.
type LineInput struct {
	Product  string `json:"product" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

// AddressInput is the shipping address of a new order.
type AddressInput struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country" validate:"required"`
}

// CreateOrderInput is the body of an order placement. Any client total is ignored.
type CreateOrderInput struct {
	Exporter        string       `json:"exporter" validate:"required"`
	Products        []LineInput  `json:"products" validate:"required,min=1,dive"`
	ShippingAddress AddressInput `json:"shippingAddress"`
}

// Create places an order for the calling buyer. Stock for every line is
// reserved before the order is stored; a failure releases what was taken.
func (s *OrderService) Create(ctx context.Context, caller models.Caller, in CreateOrderInput) (*models.Order, error) {
	if !caller.Is(models.RoleBuyer) {
		return nil, utils.NewError(utils.ErrForbidden, "only buyers can place orders")
	}
	if err := utils.Validate(in); err != nil {
		return nil, err
	}

	exporterID, err := parseID("exporter", in.Exporter)
	if err != nil {
		return nil, err
	}
	exporter, err := s.users.FindByID(ctx, exporterID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.NewError(utils.ErrNotFound, "exporter not found")
		}
		return nil, err
	}
	if exporter.Role != models.RoleExporter {
		return nil, utils.NewError(utils.ErrNotFound, "exporter not found")
	}

	lines := make([]models.OrderLine, 0, len(in.Products))
	for i, l := range in.Products {
		id, err := parseID(fmt.Sprintf("products[%d].product", i), l.Product)
		if err != nil {
			return nil, err
		}
		lines = append(lines, models.OrderLine{ProductID: id, Quantity: l.Quantity})
	}

	priced := make([]utils.LineTotal, 0, len(lines))
	for _, l := range lines {
		p, err := s.products.FindByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.IsActive {
			return nil, utils.NewError(utils.ErrNotFound, "product %s not found", p.ID.Hex())
		}
		if p.Exporter != exporterID {
			return nil, utils.NewError(utils.ErrValidation, "product %s is not sold by this exporter", p.ID.Hex())
		}
		priced = append(priced, utils.LineTotal{UnitPrice: p.PricePerUnit, Quantity: l.Quantity})
	}

	reserved := make([]models.OrderLine, 0, len(lines))
	release := func() {
		// The request context may be the reason we failed.
		rctx := context.WithoutCancel(ctx)
		for _, r := range reserved {
			if err := s.products.ReleaseStock(rctx, r.ProductID, r.Quantity); err != nil {
				slog.ErrorContext(ctx, "release stock",
					slog.String("product_id", r.ProductID.Hex()),
					slog.Int("quantity", r.Quantity),
					slog.Any("error", err))
			}
		}
	}
	for _, l := range lines {
		if err := s.products.ReserveStock(ctx, l.ProductID, l.Quantity); err != nil {
			release()
			return nil, err
		}
		reserved = append(reserved, l)
	}

	order := &models.Order{
		Buyer:       caller.ID,
		Exporter:    exporterID,
		Products:    lines,
		TotalAmount: utils.OrderTotal(priced),
		ShippingAddress: models.Address{
			Street:  in.ShippingAddress.Street,
			City:    in.ShippingAddress.City,
			State:   in.ShippingAddress.State,
			Zip:     in.ShippingAddress.Zip,
			Country: in.ShippingAddress.Country,
		},
		TrackingInfo: models.TrackingInfo{Status: models.StatusPending},
	}
	if err := s.orders.Create(ctx, order); err != nil {
		release()
		return nil, err
	}

	s.publish(ctx, events.NewOrderEvent(events.OrderCreated, order))
	return order, nil
}

// ListForBuyer returns the orders placed by the calling buyer.
func (s *OrderService) ListForBuyer(ctx context.Context, caller models.Caller) ([]models.Order, error) {
	if !caller.Is(models.RoleBuyer) {
		return nil, utils.NewError(utils.ErrForbidden, "only buyers have placed orders")
	}
	return s.orders.List(ctx, repository.OrderFilter{Buyer: &caller.ID})
}

// ListForExporter returns the orders addressed to the calling exporter.
func (s *OrderService) ListForExporter(ctx context.Context, caller models.Caller) ([]models.Order, error) {
	if !caller.Is(models.RoleExporter) {
		return nil, utils.NewError(utils.ErrForbidden, "only exporters receive orders")
	}
	return s.orders.List(ctx, repository.OrderFilter{Exporter: &caller.ID})
}

// ListForShipper returns the orders assigned to the calling shipper.
func (s *OrderService) ListForShipper(ctx context.Context, caller models.Caller) ([]models.Order, error) {
	if !caller.Is(models.RoleShipper) {
		return nil, utils.NewError(utils.ErrForbidden, "only shippers have assigned orders")
	}
	return s.orders.List(ctx, repository.OrderFilter{Shipper: &caller.ID})
}

// AssignShipper hands the order to shipperID and issues a fresh tracking
// number. Reassignment is allowed and always changes the tracking number.
func (s *OrderService) AssignShipper(ctx context.Context, caller models.Caller, orderID, shipperID primitive.ObjectID) (*models.Order, error) {
	if !caller.Is(models.RoleExporter) {
		return nil, utils.NewError(utils.ErrForbidden, "only exporters can assign shippers")
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Exporter != caller.ID {
		return nil, utils.NewError(utils.ErrForbidden, "order belongs to another exporter")
	}

	shipper, err := s.users.FindByID(ctx, shipperID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.NewError(utils.ErrNotFound, "shipper not found")
		}
		return nil, err
	}
	if shipper.Role != models.RoleShipper {
		return nil, utils.NewError(utils.ErrNotFound, "shipper not found")
	}

	tn, err := s.trackingNumber(order.ID, order.TrackingInfo.TrackingNumber)
	if err != nil {
		return nil, err
	}
	order.Shipper = &shipper.ID
	order.TrackingInfo = models.TrackingInfo{TrackingNumber: tn, Status: models.StatusPending}

	if err := s.orders.UpdateTracking(ctx, order); err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewOrderEvent(events.OrderShipperAssigned, order))
	return order, nil
}

// StatusInput is the body of a status update. EstimatedDelivery is only
// accepted from the assigned shipper.
type StatusInput struct {
	Status            string
	EstimatedDelivery *time.Time
}

// UpdateStatus moves the order to a new tracking status. Exporters must own
// the order; shippers must be assigned to it, and see NotFound otherwise.
func (s *OrderService) UpdateStatus(ctx context.Context, caller models.Caller, orderID primitive.ObjectID, in StatusInput) (*models.Order, error) {
	if !caller.Is(models.RoleExporter, models.RoleShipper) {
		return nil, utils.NewError(utils.ErrForbidden, "only exporters and shippers can update status")
	}
	next, err := models.ParseTrackingStatus(in.Status)
	if err != nil {
		return nil, utils.NewError(utils.ErrValidation, "status must be one of %v", models.TrackingStatuses)
	}
	if in.EstimatedDelivery != nil && !caller.Is(models.RoleShipper) {
		return nil, utils.NewError(utils.ErrValidation, "estimatedDelivery can only be set by the assigned shipper")
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch caller.Role {
	case models.RoleExporter:
		if order.Exporter != caller.ID {
			return nil, utils.NewError(utils.ErrForbidden, "order belongs to another exporter")
		}
	case models.RoleShipper:
		if !order.AssignedTo(caller.ID) {
			return nil, utils.NewError(utils.ErrNotFound, "order not found or not assigned to you")
		}
	}

	prev := order.TrackingInfo.Status
	if prev == "" {
		prev = models.StatusPending
	}
	if !models.CanTransition(prev, next) {
		return nil, utils.NewError(utils.ErrValidation, "cannot move order from %s to %s", prev, next)
	}

	order.TrackingInfo.Status = next
	if in.EstimatedDelivery != nil {
		eta := in.EstimatedDelivery.UTC()
		order.TrackingInfo.EstimatedDelivery = &eta
	}
	if err := s.orders.UpdateTracking(ctx, order); err != nil {
		return nil, err
	}

	ev := events.NewOrderEvent(events.OrderStatusChanged, order)
	ev.PreviousStatus = prev
	s.publish(ctx, ev)
	return order, nil
}

// publish emits ev after a committed write. Failures are logged only.
func (s *OrderService) publish(ctx context.Context, ev events.OrderEvent) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.WarnContext(ctx, "publish order event",
			slog.String("type", ev.Type),
			slog.String("order_id", ev.OrderID),
			slog.Any("error", err))
	}
}

func parseID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, utils.NewError(utils.ErrValidation, "%s must be a valid id", field)
	}
	return id, nil
}
