// Package http provides HTTP handlers for inquiry intake and the admin inquiry views.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditDomain "github.com/healo/piiguard/internal/audit/domain"
	auditUseCase "github.com/healo/piiguard/internal/audit/usecase"
	guardHTTP "github.com/healo/piiguard/internal/guard/http"
	"github.com/healo/piiguard/internal/httputil"
	"github.com/healo/piiguard/internal/inquiry/http/dto"
	inquiryUseCase "github.com/healo/piiguard/internal/inquiry/usecase"
	customValidation "github.com/healo/piiguard/internal/validation"
)

// InquiryHandler handles HTTP requests for inquiry operations.
type InquiryHandler struct {
	inquiryUseCase inquiryUseCase.InquiryUseCase
	recorder       auditUseCase.AuditRecorder
	logger         *slog.Logger
}

// NewInquiryHandler creates a new inquiry handler with required dependencies.
func NewInquiryHandler(
	inquiryUseCase inquiryUseCase.InquiryUseCase,
	recorder auditUseCase.AuditRecorder,
	logger *slog.Logger,
) *InquiryHandler {
	return &InquiryHandler{
		inquiryUseCase: inquiryUseCase,
		recorder:       recorder,
		logger:         logger,
	}
}

// SubmitHandler accepts a public inquiry form.
// POST /v1/public/inquiries - rate limited per client IP.
// Returns 201 Created with the inquiry ID. The submitted values are never echoed.
func (h *InquiryHandler) SubmitHandler(c *gin.Context) {
	var req dto.SubmitInquiryRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid request body"), h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	inquiry, err := h.inquiryUseCase.Submit(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapInquiryToSubmitResponse(inquiry))
}

// ListHandler returns masked inquiry summaries.
// GET /v1/admin/inquiries?offset=0&limit=50 - admin only, audited as LIST_INQUIRIES.
func (h *InquiryHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	inquiries, err := h.inquiryUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.recorder.RecordAsync(c.Request.Context(), guardHTTP.AdminEvent(c, auditDomain.ActionListInquiries,
		map[string]any{
			"offset":        offset,
			"limit":         limit,
			"count":         len(inquiries),
			"document_type": "inquiry",
		}))

	c.JSON(http.StatusOK, dto.MapInquiriesToListResponse(inquiries))
}

// GetHandler returns one decrypted inquiry.
// GET /v1/admin/inquiries/:id - admin only, audited as VIEW_INQUIRY.
func (h *InquiryHandler) GetHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid inquiry id"), h.logger)
		return
	}

	inquiry, err := h.inquiryUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.recorder.RecordAsync(c.Request.Context(), guardHTTP.AdminEvent(c, auditDomain.ActionViewInquiry,
		map[string]any{
			"inquiry_id":    id.String(),
			"document_type": "inquiry",
		}))

	c.JSON(http.StatusOK, dto.GetInquiryResponse{OK: true, Data: dto.MapInquiryToDetail(inquiry)})
}

// ExportHandler returns a decrypted batch of inquiries.
// GET /v1/admin/inquiries/export?created_at_from=...&created_at_to=... - admin only,
// audited as EXPORT_INQUIRIES. At most inquiryUseCase.MaxExportSize rows are returned.
func (h *InquiryHandler) ExportHandler(c *gin.Context) {
	createdAtFrom, createdAtTo, err := httputil.ParseTimeRange(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	inquiries, err := h.inquiryUseCase.Export(c.Request.Context(), createdAtFrom, createdAtTo)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.recorder.RecordAsync(c.Request.Context(), guardHTTP.AdminEvent(c, auditDomain.ActionExportInquiries,
		map[string]any{
			"count":         len(inquiries),
			"document_type": "inquiry",
		}))

	c.JSON(http.StatusOK, dto.MapInquiriesToExportResponse(inquiries))
}
