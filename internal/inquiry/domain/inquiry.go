// Package domain defines concierge inquiries submitted through the public form.
// Inquiry documents are stored with their PII fields encrypted next to a masked summary.
package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/healo/piiguard/internal/errors"
)

// ErrInquiryNotFound indicates no inquiry exists with the requested ID.
var ErrInquiryNotFound = apperrors.Wrap(apperrors.ErrNotFound, "inquiry not found")

// Status is the handling state of an inquiry.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusClosed    Status = "closed"
)

// ContactMethod is how the patient asked to be contacted.
type ContactMethod string

const (
	ContactEmail     ContactMethod = "email"
	ContactPhone     ContactMethod = "phone"
	ContactWhatsApp  ContactMethod = "whatsapp"
	ContactMessenger ContactMethod = "messenger"
)

// Inquiry is a stored inquiry.
//
// Document holds every submitted field. As stored, its protected fields are ciphertext
// envelopes; after decryption they are plaintext. Summary is the same document with
// protected fields masked and is the only form list views expose.
type Inquiry struct {
	ID        uuid.UUID
	Status    Status
	Document  map[string]any
	Summary   map[string]any
	CreatedAt time.Time
}

// SubmitInquiryInput is a validated form submission.
type SubmitInquiryInput struct {
	FullName        string
	Email           string
	Phone           string
	WhatsApp        string
	ContactMethod   ContactMethod
	ContactID       string
	MessengerHandle string
	Message         string
	Treatment       string
	Destination     string
	Language        string
	Consent         bool
}

// Document returns the submission as a document keyed by field name. Empty optional
// values are omitted.
func (in *SubmitInquiryInput) Document() map[string]any {
	doc := map[string]any{
		"full_name":      in.FullName,
		"email":          in.Email,
		"contact_method": string(in.ContactMethod),
		"consent":        in.Consent,
	}

	optional := map[string]string{
		"phone":            in.Phone,
		"whatsapp":         in.WhatsApp,
		"contact_id":       in.ContactID,
		"messenger_handle": in.MessengerHandle,
		"message":          in.Message,
		"treatment":        in.Treatment,
		"destination":      in.Destination,
		"language":         in.Language,
	}
	for key, value := range optional {
		if value != "" {
			doc[key] = value
		}
	}
	return doc
}
