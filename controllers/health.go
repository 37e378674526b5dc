package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"xportconnect/utils"
)

// HealthController reports liveness and store reachability
type HealthController struct {
	base
	ping func(ctx context.Context) error
}

// NewHealthController creates a new HealthController
func NewHealthController(ping func(ctx context.Context) error, rs utils.Responder, timeout time.Duration) *HealthController {
	return &HealthController{base: base{rs: rs, timeout: timeout}, ping: ping}
}

// Health answers 200 when the store responds and 503 otherwise
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := hc.withTimeout(r)
	defer cancel()
	if err := hc.ping(ctx); err != nil {
		hc.rs.Error(w, r, fmt.Errorf("%w: store ping: %v", utils.ErrUnavailable, err))
		return
	}
	hc.rs.JSON(w, http.StatusOK, "ok", nil)
}
