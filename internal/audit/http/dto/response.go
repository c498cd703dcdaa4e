// Package dto provides response types for the audit log API.
package dto

import (
	"time"

	auditDomain "github.com/healo/piiguard/internal/audit/domain"
)

// AuditLogResponse represents an audit entry in API responses.
type AuditLogResponse struct {
	ID          string         `json:"id"`
	ActorEmail  string         `json:"actor_email,omitempty"`
	ActorUserID string         `json:"actor_user_id,omitempty"`
	Action      string         `json:"action"`
	IPAddress   string         `json:"ip_address"`
	UserAgent   string         `json:"user_agent,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Signed      bool           `json:"signed"`
	KeyVersion  string         `json:"key_version,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// MapAuditLogToResponse converts a domain audit entry to an API response.
func MapAuditLogToResponse(entry *auditDomain.Entry) AuditLogResponse {
	return AuditLogResponse{
		ID:          entry.ID.String(),
		ActorEmail:  entry.ActorEmail,
		ActorUserID: entry.ActorUserID,
		Action:      string(entry.Action),
		IPAddress:   entry.IPAddress,
		UserAgent:   entry.UserAgent,
		Metadata:    entry.Metadata,
		Signed:      entry.IsSigned(),
		KeyVersion:  entry.KeyVersion,
		CreatedAt:   entry.CreatedAt,
	}
}

// ListAuditLogsResponse represents a paginated list of audit entries.
type ListAuditLogsResponse struct {
	OK   bool               `json:"ok"`
	Data []AuditLogResponse `json:"data"`
}

// MapAuditLogsToListResponse converts domain audit entries to a list API response.
func MapAuditLogsToListResponse(entries []*auditDomain.Entry) ListAuditLogsResponse {
	responses := make([]AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, MapAuditLogToResponse(entry))
	}
	return ListAuditLogsResponse{
		OK:   true,
		Data: responses,
	}
}
