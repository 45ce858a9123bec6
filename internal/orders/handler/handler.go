package handler

import (
	"net/http"

	"recycle_portal_backend/internal/orders/service"
	"recycle_portal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for orders.
type Handler struct {
	svc *service.Service
}

// New creates a new orders handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers order routes. The wildcard is named orderId so
// nested routes from other modules can share it.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:orderId", h.Get)
}

// Get returns an order's current price and status.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	resp, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}
