package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"recycle_portal_backend/internal/counteroffers/service"
	"recycle_portal_backend/internal/counteroffers/transport"
	"recycle_portal_backend/platform/httpkit"
	"recycle_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// PublicHandler serves the customer's token-addressed review page. The token
// is the only credential.
type PublicHandler struct {
	svc *service.Service
	val *validator.Validator
}

// NewPublicHandler creates a new public handler for counter offers.
func NewPublicHandler(svc *service.Service, val *validator.Validator) *PublicHandler {
	return &PublicHandler{svc: svc, val: val}
}

// RegisterRoutes mounts public counter offer routes (no auth middleware).
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:token", h.Get)
	rg.POST("/:token/accept", h.Accept)
	rg.POST("/:token/decline", h.Decline)
}

// Get returns the offer and whether the customer can still act on it.
func (h *PublicHandler) Get(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	resp, err := h.svc.GetByToken(c.Request.Context(), token)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

// Accept records the customer's acceptance of the amended price.
func (h *PublicHandler) Accept(c *gin.Context) {
	h.respond(c, h.svc.Accept)
}

// Decline records the customer's refusal of the amended price.
func (h *PublicHandler) Decline(c *gin.Context) {
	h.respond(c, h.svc.Decline)
}

type respondFunc func(ctx context.Context, token string, req transport.RespondRequest) (transport.PublicCounterOfferResponse, error)

func (h *PublicHandler) respond(c *gin.Context, action respondFunc) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	// The note is optional, so an empty body is fine.
	var req transport.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	resp, err := action(c.Request.Context(), token, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}
