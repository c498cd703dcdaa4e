package domain

import (
	"strings"
)

// Reason explains an authorization decision.
type Reason string

const (
	ReasonUserMetadataRole Reason = "user_metadata_role"
	ReasonAppMetadataRole  Reason = "app_metadata_role"
	ReasonEmailAllowlist   Reason = "email_allowlist"
	ReasonNotAdmin         Reason = "not_admin"
	ReasonNoUser           Reason = "no_user"
)

// Decision is the immutable outcome of authorizing a request.
type Decision struct {
	IsAdmin    bool
	Reason     Reason
	AuthMethod AuthMethod
	Identity   *Identity
}

// Allowlist is a set of lower-cased admin emails.
type Allowlist map[string]struct{}

// ParseAllowlist parses a comma-separated email list. Entries are trimmed and
// lower-cased; an empty value yields an empty list.
func ParseAllowlist(raw string) Allowlist {
	allowlist := make(Allowlist)
	for _, entry := range strings.Split(raw, ",") {
		email := strings.ToLower(strings.TrimSpace(entry))
		if email != "" {
			allowlist[email] = struct{}{}
		}
	}
	return allowlist
}

// Contains reports whether email is allow-listed, ignoring case.
func (a Allowlist) Contains(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	_, ok := a[email]
	return ok
}

// rule grants admin access when match returns true.
type rule struct {
	reason Reason
	match  func(identity *Identity, allowlist Allowlist) bool
}

// rules are evaluated top to bottom; the first match wins.
var rules = []rule{
	{ReasonUserMetadataRole, func(i *Identity, _ Allowlist) bool {
		return i.RoleClaims.UserMetadataRole == AdminRole
	}},
	{ReasonAppMetadataRole, func(i *Identity, _ Allowlist) bool {
		return i.RoleClaims.AppMetadataRole == AdminRole
	}},
	{ReasonEmailAllowlist, func(i *Identity, a Allowlist) bool {
		return a.Contains(i.Email)
	}},
}

// Authorize decides whether identity is an admin. A nil identity yields no_user.
func Authorize(identity *Identity, allowlist Allowlist) Decision {
	if identity == nil {
		return Decision{IsAdmin: false, Reason: ReasonNoUser}
	}

	for _, r := range rules {
		if r.match(identity, allowlist) {
			return Decision{
				IsAdmin:    true,
				Reason:     r.reason,
				AuthMethod: identity.AuthMethod,
				Identity:   identity,
			}
		}
	}

	return Decision{
		IsAdmin:    false,
		Reason:     ReasonNotAdmin,
		AuthMethod: identity.AuthMethod,
		Identity:   identity,
	}
}
