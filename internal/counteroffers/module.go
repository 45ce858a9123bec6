// Package counteroffers provides the counter-offer negotiation module.
package counteroffers

import (
	"recycle_portal_backend/internal/counteroffers/handler"
	"recycle_portal_backend/internal/counteroffers/repository"
	"recycle_portal_backend/internal/counteroffers/service"
	"recycle_portal_backend/internal/counteroffers/token"
	"recycle_portal_backend/internal/events"
	apphttp "recycle_portal_backend/internal/http"
	"recycle_portal_backend/platform/config"
	"recycle_portal_backend/platform/logger"
	"recycle_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is the configuration the module reads.
type Config interface {
	config.CounterOfferConfig
	GetAppBaseURL() string
	GetMinIOMaxFileSize() int64
}

// Module is the counter offers bounded context implementing http.Module.
type Module struct {
	handler       *handler.Handler
	publicHandler *handler.PublicHandler
	service       *service.Service
}

// NewModule wires the counter-offer module. orders and evidence are adapters
// owned by the composition root.
func NewModule(
	pool *pgxpool.Pool,
	orders service.OrderLink,
	evidence service.EvidenceStore,
	eventBus events.Bus,
	val *validator.Validator,
	cfg Config,
	log *logger.Logger,
) *Module {
	svc := service.New(service.Dependencies{
		Repo:     repository.New(pool, log),
		Orders:   orders,
		Evidence: evidence,
		Tokens:   token.NewRandomIssuer(token.DefaultBytes),
		Notifier: service.NewBusNotifier(eventBus),
		Clock:    service.SystemClock{},
		Log:      log,
	}, service.Options{
		Policy:           cfg.GetCounterOfferPolicy(),
		Validity:         cfg.GetCounterOfferValidity(),
		MaxEvidenceBytes: cfg.GetMinIOMaxFileSize(),
		ReviewBaseURL:    cfg.GetAppBaseURL(),
	})

	return &Module{
		handler:       handler.New(svc, val, cfg.GetMinIOMaxFileSize()),
		publicHandler: handler.NewPublicHandler(svc, val),
		service:       svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "counter-offers"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts counter offer routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/counter-offers"))
	m.handler.RegisterOrderRoutes(ctx.Protected.Group("/orders"))

	// Customer review page, addressed by token only
	m.publicHandler.RegisterRoutes(ctx.Public.Group("/counter-offers"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
