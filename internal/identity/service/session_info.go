package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	identityDomain "github.com/healo/piiguard/internal/identity/domain"
)

// sessionClaims are the access token claims that identify a provider session.
type sessionClaims struct {
	SessionID string           `json:"session_id"`
	AuthTime  *jwt.NumericDate `json:"auth_time"`
	AMR       json.RawMessage  `json:"amr"`
	jwt.RegisteredClaims
}

// authMethodRef is one entry of the provider's "amr" claim.
type authMethodRef struct {
	Method    string `json:"method"`
	Timestamp int64  `json:"timestamp"`
}

// ReadSessionInfo identifies the provider session held in the session cookie. The
// token signature is not checked; the access guard validates the same token later.
//
// The authentication time is the latest "amr" timestamp, then "auth_time", then "iat".
func ReadSessionInfo(cookies []*http.Cookie, name string) (*identityDomain.SessionInfo, error) {
	token, err := ReadSessionToken(cookies, name)
	if err != nil {
		return nil, err
	}

	claims := &sessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", identityDomain.ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", identityDomain.ErrInvalidToken)
	}

	authenticatedAt := claims.authenticatedAt()
	if authenticatedAt.IsZero() {
		return nil, fmt.Errorf("%w: missing authentication time", identityDomain.ErrInvalidToken)
	}

	return &identityDomain.SessionInfo{
		ID:              claims.SessionID,
		UserID:          claims.Subject,
		AuthenticatedAt: authenticatedAt.UTC(),
	}, nil
}

func (c *sessionClaims) authenticatedAt() time.Time {
	var latest int64
	var refs []authMethodRef
	if len(c.AMR) > 0 && json.Unmarshal(c.AMR, &refs) == nil {
		for _, ref := range refs {
			if ref.Timestamp > latest {
				latest = ref.Timestamp
			}
		}
	}

	switch {
	case latest > 0:
		return time.Unix(latest, 0)
	case c.AuthTime != nil:
		return c.AuthTime.Time
	case c.IssuedAt != nil:
		return c.IssuedAt.Time
	default:
		return time.Time{}
	}
}
