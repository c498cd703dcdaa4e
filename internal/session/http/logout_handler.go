package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	auditDomain "github.com/healo/piiguard/internal/audit/domain"
	auditUseCase "github.com/healo/piiguard/internal/audit/usecase"
	guardHTTP "github.com/healo/piiguard/internal/guard/http"
)

// LogoutHandler ends admin sessions.
type LogoutHandler struct {
	provider ProviderSession
	recorder auditUseCase.AuditRecorder
	cookie   CookieConfig
}

// NewLogoutHandler creates a LogoutHandler.
func NewLogoutHandler(
	provider ProviderSession,
	recorder auditUseCase.AuditRecorder,
	cookie CookieConfig,
) *LogoutHandler {
	return &LogoutHandler{
		provider: provider,
		recorder: recorder,
		cookie:   cookie,
	}
}

// LogoutHandler clears the session metadata and provider cookies.
// POST /v1/admin/session/logout
// Audited as ADMIN_LOGOUT. Returns 200 OK.
func (h *LogoutHandler) LogoutHandler(c *gin.Context) {
	clearSession(c, h.cookie, h.provider)
	h.recorder.RecordAsync(c.Request.Context(), guardHTTP.AdminEvent(c, auditDomain.ActionAdminLogout, nil))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
