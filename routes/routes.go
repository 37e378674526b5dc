package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"xportconnect/controllers"
	"xportconnect/middleware"
	"xportconnect/models"
	"xportconnect/utils"
)

// Controllers groups the handlers mounted by RegisterRoutes.
type Controllers struct {
	Users    *controllers.UserController
	Products *controllers.ProductController
	Orders   *controllers.OrderController
	Chat     *controllers.ChatController
	Health   *controllers.HealthController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers, issuer *utils.TokenIssuer, rs utils.Responder, metrics *middleware.Metrics) {
	authenticate := middleware.Authenticate(issuer, rs)
	only := func(roles ...models.Role) mux.MiddlewareFunc {
		return mux.MiddlewareFunc(middleware.Authorize(rs, roles...))
	}

	router.Use(middleware.RequestID, middleware.Logger, metrics.Instrument)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.Fail(w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.Fail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Operational routes
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", c.Health.Health).Methods(http.MethodGet)

	// Full paths on the root router, so a method mismatch answers 405.
	with := func(h http.HandlerFunc, roles ...models.Role) http.Handler {
		if len(roles) == 0 {
			return authenticate(h)
		}
		return authenticate(only(roles...)(h))
	}
	optional := middleware.OptionalAuthenticate(issuer, rs)

	// Auth routes
	router.HandleFunc("/auth/register", c.Users.Register).Methods(http.MethodPost)
	router.HandleFunc("/auth/login", c.Users.Login).Methods(http.MethodPost)
	router.Handle("/auth/getUser", with(c.Users.GetProfile)).Methods(http.MethodGet)
	router.Handle("/auth/profile", with(c.Users.UpdateProfile)).Methods(http.MethodPut)

	// Product routes
	router.Handle("/products", optional(http.HandlerFunc(c.Products.GetProducts))).Methods(http.MethodGet)
	router.Handle("/products", with(c.Products.CreateProduct, models.RoleExporter)).Methods(http.MethodPost)
	router.Handle("/products/{id}", optional(http.HandlerFunc(c.Products.GetProductByID))).Methods(http.MethodGet)
	router.Handle("/products/{id}", with(c.Products.UpdateProduct, models.RoleExporter)).Methods(http.MethodPut)
	router.Handle("/products/{id}", with(c.Products.DeleteProduct, models.RoleExporter)).Methods(http.MethodDelete)

	// Order routes
	router.Handle("/orders", with(c.Orders.CreateOrder, models.RoleBuyer)).Methods(http.MethodPost)
	router.Handle("/orders/buyer", with(c.Orders.GetBuyerOrders, models.RoleBuyer)).Methods(http.MethodGet)
	router.Handle("/orders/exporter", with(c.Orders.GetExporterOrders, models.RoleExporter)).Methods(http.MethodGet)
	router.Handle("/orders/shipper", with(c.Orders.GetShipperOrders, models.RoleShipper)).Methods(http.MethodGet)
	router.Handle("/orders/all-shippers", with(c.Users.ListShippers, models.RoleExporter)).Methods(http.MethodGet)
	router.Handle("/orders/{orderId}/assign-shipper", with(c.Orders.AssignShipper, models.RoleExporter)).Methods(http.MethodPatch)
	router.Handle("/orders/{orderId}/status", with(c.Orders.UpdateStatus, models.RoleExporter, models.RoleShipper)).Methods(http.MethodPatch, http.MethodPut)

	// Shipping routes kept for older shipper clients
	router.Handle("/shipping/assigned-orders", with(c.Orders.GetShipperOrders, models.RoleShipper)).Methods(http.MethodGet)
	router.Handle("/shipping/update-status/{orderId}", with(c.Orders.UpdateStatus, models.RoleShipper)).Methods(http.MethodPatch)

	// Chatbot
	router.HandleFunc("/chatbot/ask", c.Chat.Ask).Methods(http.MethodPost)
}
