// Package http provides the admin HTTP handler for reading the audit trail.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/healo/piiguard/internal/audit/domain"
	"github.com/healo/piiguard/internal/audit/http/dto"
	auditUseCase "github.com/healo/piiguard/internal/audit/usecase"
	guardHTTP "github.com/healo/piiguard/internal/guard/http"
	"github.com/healo/piiguard/internal/httputil"
)

// AuditLogHandler handles HTTP requests for audit log operations.
type AuditLogHandler struct {
	auditLogUseCase auditUseCase.AuditLogUseCase
	recorder        auditUseCase.AuditRecorder
	logger          *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler with required dependencies.
func NewAuditLogHandler(
	auditLogUseCase auditUseCase.AuditLogUseCase,
	recorder auditUseCase.AuditRecorder,
	logger *slog.Logger,
) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUseCase: auditLogUseCase,
		recorder:        recorder,
		logger:          logger,
	}
}

// ListHandler retrieves audit entries with pagination and optional time filtering.
// GET /v1/admin/audit-logs?offset=0&limit=50&created_at_from=2026-02-01T00:00:00Z&created_at_to=2026-02-14T23:59:59Z
// Entries are ordered newest first. Both bounds are RFC3339, converted to UTC and inclusive.
// Reading the trail is itself audited as LIST_AUDIT_LOGS.
func (h *AuditLogHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	createdAtFrom, createdAtTo, err := httputil.ParseTimeRange(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	entries, err := h.auditLogUseCase.List(c.Request.Context(), offset, limit, createdAtFrom, createdAtTo)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.recorder.RecordAsync(c.Request.Context(), guardHTTP.AdminEvent(c, auditDomain.ActionListAuditLogs,
		map[string]any{
			"offset": offset,
			"limit":  limit,
			"count":  len(entries),
		}))

	c.JSON(http.StatusOK, dto.MapAuditLogsToListResponse(entries))
}
