// Package domain defines append-only audit entries for privileged actions and access denials.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action names what an audit entry records.
type Action string

const (
	ActionUnauthorizedAdminAccess Action = "UNAUTHORIZED_ADMIN_ACCESS"
	ActionListInquiries           Action = "LIST_INQUIRIES"
	ActionViewInquiry             Action = "VIEW_INQUIRY"
	ActionExportInquiries         Action = "EXPORT_INQUIRIES"
	ActionListAuditLogs           Action = "LIST_AUDIT_LOGS"
	ActionAdminSessionExpired     Action = "ADMIN_SESSION_EXPIRED"
	ActionAdminLogout             Action = "ADMIN_LOGOUT"
)

// Event is what callers hand to the recorder. IP, user agent and metadata are raw;
// the recorder masks and sanitizes them before anything is stored.
type Event struct {
	ActorEmail  string
	ActorUserID string
	Action      Action
	IP          string
	UserAgent   string
	Metadata    map[string]any
}

// Entry is a stored audit record. Entries are never updated or deleted by the application.
// Signature is an HMAC over the canonical entry, keyed from the PII key named by KeyVersion;
// both are empty when no key was configured at write time.
type Entry struct {
	ID          uuid.UUID
	ActorEmail  string
	ActorUserID string
	Action      Action
	IPAddress   string
	UserAgent   string
	Metadata    map[string]any
	Signature   []byte
	KeyVersion  string
	CreatedAt   time.Time
}

// IsSigned reports whether the entry carries a signature.
func (e *Entry) IsSigned() bool {
	return len(e.Signature) > 0 && e.KeyVersion != ""
}
