package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"recycle_portal_backend/internal/counteroffers/domain"
	"recycle_portal_backend/internal/counteroffers/service"
	"recycle_portal_backend/internal/counteroffers/transport"
	"recycle_portal_backend/platform/httpkit"
	"recycle_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	evidenceFormField = "files"
	// multipart overhead allowed on top of the files themselves
	multipartSlackBytes = 1 << 20
)

// Handler handles recycler-facing counter offer endpoints.
type Handler struct {
	svc              *service.Service
	val              *validator.Validator
	maxEvidenceBytes int64
}

// New creates a new counter offers handler.
func New(svc *service.Service, val *validator.Validator, maxEvidenceBytes int64) *Handler {
	if maxEvidenceBytes <= 0 {
		maxEvidenceBytes = domain.DefaultMaxEvidenceBytes
	}
	return &Handler{svc: svc, val: val, maxEvidenceBytes: maxEvidenceBytes}
}

// RegisterRoutes registers counter offer routes on a protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.POST("/evidence", h.UploadEvidence)
	rg.GET("/:id", h.GetByID)
}

// RegisterOrderRoutes registers the per-order history route.
func (h *Handler) RegisterOrderRoutes(rg *gin.RouterGroup) {
	rg.GET("/:orderId/counter-offers", h.ListForOrder)
}

// Create proposes a revised price for an order.
func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateCounterOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	resp, err := h.svc.CreateCounterOffer(c.Request.Context(), req, identity.DisplayName())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, resp)
}

// UploadEvidence stores inspection photos before an offer is created.
func (h *Handler) UploadEvidence(c *gin.Context) {
	limit := int64(domain.MaxEvidenceImages)*h.maxEvidenceBytes + multipartSlackBytes
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	form, err := c.MultipartForm()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "expected multipart form with files")
		return
	}

	headers := form.File[evidenceFormField]
	files := make([]service.EvidenceFile, 0, len(headers))
	for _, fh := range headers {
		file, err := h.readFormFile(fh)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
			return
		}
		files = append(files, file)
	}

	resp, err := h.svc.UploadEvidence(c.Request.Context(), files)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, resp)
}

// readFormFile reads at most one byte past the limit so oversized files are
// reported by size without buffering them whole.
func (h *Handler) readFormFile(fh *multipart.FileHeader) (service.EvidenceFile, error) {
	f, err := fh.Open()
	if err != nil {
		return service.EvidenceFile{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxEvidenceBytes+1))
	if err != nil {
		return service.EvidenceFile{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return service.EvidenceFile{FileName: fh.Filename, Data: data}, nil
}

// GetByID returns an offer with its review link.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

// ListForOrder returns every offer made on an order.
func (h *Handler) ListForOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	resp, err := h.svc.ListForOrder(c.Request.Context(), orderID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}
