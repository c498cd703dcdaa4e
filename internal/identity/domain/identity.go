// Package domain defines admin identities and the pure authorization decision over them.
package domain

import (
	"time"
)

// AdminRole is the role claim value that grants admin access.
const AdminRole = "admin"

// AuthMethod names the credential channel an identity was resolved from.
type AuthMethod string

const (
	AuthMethodBearer AuthMethod = "bearer"
	AuthMethodCookie AuthMethod = "cookie"
)

// User is the account returned by the identity provider.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	AppMetadata  map[string]any `json:"app_metadata"`
}

// RoleClaims holds the optional role values found in the user's metadata.
type RoleClaims struct {
	UserMetadataRole string
	AppMetadataRole  string
}

// Identity is the per-request view of an authenticated user. It is never persisted.
type Identity struct {
	UserID     string
	Email      string
	RoleClaims RoleClaims
	AuthMethod AuthMethod
}

// NewIdentity builds an Identity from a provider user.
func NewIdentity(user *User, method AuthMethod) *Identity {
	return &Identity{
		UserID: user.ID,
		Email:  user.Email,
		RoleClaims: RoleClaims{
			UserMetadataRole: roleOf(user.UserMetadata),
			AppMetadataRole:  roleOf(user.AppMetadata),
		},
		AuthMethod: method,
	}
}

func roleOf(metadata map[string]any) string {
	role, _ := metadata["role"].(string)
	return role
}

// SessionInfo describes the provider session behind a session cookie. It is read from
// the access token without verifying it and must never be used to authorize a request.
type SessionInfo struct {
	// ID is the provider session id. Empty when the token carries none.
	ID     string
	UserID string
	// AuthenticatedAt is when the user last signed in. Token refreshes do not move it.
	AuthenticatedAt time.Time
}

// Key identifies the session across token refreshes: the provider session id when
// present, otherwise the user.
func (s SessionInfo) Key() string {
	if s.ID != "" {
		return "sid:" + s.ID
	}
	return "sub:" + s.UserID
}
