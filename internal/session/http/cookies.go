// Package http provides the Gin middleware and handler that enforce the admin session lifecycle.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	identityDomain "github.com/healo/piiguard/internal/identity/domain"
)

// CookieConfig describes how provider session cookies are cleared.
type CookieConfig struct {
	Secure bool
}

// ProviderSession inspects the identity provider's session cookies.
type ProviderSession interface {
	HasSession(cookies []*http.Cookie) bool
	SessionInfo(cookies []*http.Cookie) (*identityDomain.SessionInfo, error)
	SessionCookieNames(cookies []*http.Cookie) []string
}

func clearCookie(c *gin.Context, name string, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSession removes every provider session cookie the request carried.
func clearSession(c *gin.Context, cfg CookieConfig, provider ProviderSession) {
	for _, name := range provider.SessionCookieNames(c.Request.Cookies()) {
		clearCookie(c, name, cfg.Secure)
	}
}
