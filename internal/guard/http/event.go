package http

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	auditDomain "github.com/healo/piiguard/internal/audit/domain"
)

// AdminEvent builds an audit event for a privileged action performed by the admin
// stored in the request context. Metadata keys outside the audit allow-list are dropped
// by the recorder.
func AdminEvent(c *gin.Context, action auditDomain.Action, metadata map[string]any) auditDomain.Event {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata["request_id"] = requestid.Get(c)

	event := auditDomain.Event{
		Action:    action,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Metadata:  metadata,
	}
	if identity, ok := GetIdentity(c.Request.Context()); ok {
		event.ActorEmail = identity.Email
		event.ActorUserID = identity.UserID
		metadata["auth_method"] = string(identity.AuthMethod)
	}
	return event
}
