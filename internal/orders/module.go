// Package orders provides the narrow order record that counter offers amend.
// Full order management lives elsewhere; this module only reads an order and
// applies price and status patches.
package orders

import (
	apphttp "recycle_portal_backend/internal/http"
	"recycle_portal_backend/internal/orders/handler"
	"recycle_portal_backend/internal/orders/repository"
	"recycle_portal_backend/internal/orders/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the orders bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the orders module.
func NewModule(pool *pgxpool.Pool) *Module {
	svc := service.New(repository.New(pool))
	return &Module{handler: handler.New(svc), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "orders"
}

// Service returns the service layer for adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts order routes on the protected group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/orders"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
