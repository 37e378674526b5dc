package controllers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"xportconnect/models"
	"xportconnect/service"
	"xportconnect/utils"
)

// OrderController handles order lifecycle requests
type OrderController struct {
	base
	orders    *service.OrderService
	projector *service.Projector
}

// NewOrderController creates a new OrderController
func NewOrderController(orders *service.OrderService, projector *service.Projector, rs utils.Responder, timeout time.Duration) *OrderController {
	return &OrderController{base: base{rs: rs, timeout: timeout}, orders: orders, projector: projector}
}

// CreateOrder places an order for the calling buyer
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := oc.caller(w, r)
	if !ok {
		return
	}
	var in service.CreateOrderInput
	if err := decode(w, r, &in); err != nil {
		oc.rs.Error(w, r, err)
		return
	}

	ctx, cancel := oc.withTimeout(r)
	defer cancel()
	order, err := oc.orders.Create(ctx, caller, in)
	if err != nil {
		oc.rs.Error(w, r, err)
		return
	}
	oc.rs.JSON(w, http.StatusCreated, "order placed", order)
}

// GetBuyerOrders lists the orders the caller placed
func (oc *OrderController) GetBuyerOrders(w http.ResponseWriter, r *http.Request) {
	oc.list(w, r, oc.orders.ListForBuyer)
}

// GetExporterOrders lists the orders addressed to the caller
func (oc *OrderController) GetExporterOrders(w http.ResponseWriter, r *http.Request) {
	oc.list(w, r, oc.orders.ListForExporter)
}

// GetShipperOrders lists the orders assigned to the caller
func (oc *OrderController) GetShipperOrders(w http.ResponseWriter, r *http.Request) {
	oc.list(w, r, oc.orders.ListForShipper)
}

func (oc *OrderController) list(w http.ResponseWriter, r *http.Request, fetch func(context.Context, models.Caller) ([]models.Order, error)) {
	caller, ok := oc.caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := oc.withTimeout(r)
	defer cancel()
	orders, err := fetch(ctx, caller)
	if err != nil {
		oc.rs.Error(w, r, err)
		return
	}
	views, err := oc.projector.Project(ctx, orders)
	if err != nil {
		oc.rs.Error(w, r, err)
		return
	}
	oc.rs.JSON(w, http.StatusOK, "", views)
}

// AssignShipper hands an order to a shipper
func (oc *OrderController) AssignShipper(w http.ResponseWriter, r *http.Request) {
	caller, ok := oc.caller(w, r)
	if !ok {
		return
	}
	orderID, err := pathID(r, "orderId")
	if err != nil {
		oc.rs.Error(w, r, err)
		return
	}
	var body struct {
		ShipperID string `json:"shipperId"`
	}
	if err := decode(w, r, &body); err != nil {
		oc.rs.Error(w, r, err)
		return
	}
	shipperID, err := primitive.ObjectIDFromHex(body.ShipperID)
	if err != nil {
		oc.rs.Error(w, r, utils.NewError(utils.ErrValidation, "shipperId must be a valid id"))
		return
	}

	ctx, cancel := oc.withTimeout(r)
	defer cancel()
	order, err := oc.orders.AssignShipper(ctx, caller, orderID, shipperID)
	if err != nil {
		oc.rs.Error(w, r, err)
		return
	}
	oc.rs.JSON(w, http.StatusOK, "shipper assigned", order)
}

// UpdateStatus changes an order's tracking status
func (oc *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := oc.caller(w, r)
	if !ok {
		return
	}
	orderID, err := pathID(r, "orderId")
	if err != nil {
		oc.rs.Error(w, r, err)
		return
	}
	var body struct {
		Status            string `json:"status"`
		EstimatedDelivery string `json:"estimatedDelivery"`
	}
	if err := decode(w, r, &body); err != nil {
		oc.rs.Error(w, r, err)
		return
	}
	in := service.StatusInput{Status: body.Status}
	if body.EstimatedDelivery != "" {
		eta, err := parseDate(body.EstimatedDelivery)
		if err != nil {
			oc.rs.Error(w, r, err)
			return
		}
		in.EstimatedDelivery = &eta
	}

	ctx, cancel := oc.withTimeout(r)
	defer cancel()
	order, err := oc.orders.UpdateStatus(ctx, caller, orderID, in)
	if err != nil {
		oc.rs.Error(w, r, err)
		return
	}
	oc.rs.JSON(w, http.StatusOK, "order status updated", order)
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, utils.NewError(utils.ErrValidation, "estimatedDelivery must be RFC 3339 or YYYY-MM-DD")
}
