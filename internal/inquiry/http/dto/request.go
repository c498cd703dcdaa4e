// Package dto provides data transfer objects for the inquiry API.
package dto

import (
	"strings"

	validation "github.com/jellydator/validation"

	inquiryDomain "github.com/healo/piiguard/internal/inquiry/domain"
	customValidation "github.com/healo/piiguard/internal/validation"
)

// SubmitInquiryRequest is the public inquiry form.
type SubmitInquiryRequest struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	WhatsApp        string `json:"whatsapp"`
	ContactMethod   string `json:"contact_method"`
	ContactID       string `json:"contact_id"`
	MessengerHandle string `json:"messenger_handle"`
	Message         string `json:"message"`
	Treatment       string `json:"treatment"`
	Destination     string `json:"destination"`
	Language        string `json:"language"`
	Consent         bool   `json:"consent"`
}

// Validate checks if the submission is valid. Error messages name fields, never values.
func (r *SubmitInquiryRequest) Validate() error {
	method := inquiryDomain.ContactMethod(r.ContactMethod)

	return validation.ValidateStruct(r,
		validation.Field(&r.FullName,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoControlChars,
			validation.Length(1, 200),
		),
		validation.Field(&r.Email,
			validation.Required,
			customValidation.Email,
			validation.Length(3, 254),
		),
		validation.Field(&r.Phone,
			validation.When(method == inquiryDomain.ContactPhone, validation.Required),
			customValidation.Phone,
		),
		validation.Field(&r.WhatsApp,
			validation.When(method == inquiryDomain.ContactWhatsApp, validation.Required),
			customValidation.Phone,
		),
		validation.Field(&r.ContactMethod,
			validation.Required,
			validation.In(
				string(inquiryDomain.ContactEmail),
				string(inquiryDomain.ContactPhone),
				string(inquiryDomain.ContactWhatsApp),
				string(inquiryDomain.ContactMessenger),
			),
		),
		validation.Field(&r.ContactID,
			customValidation.NoControlChars,
			validation.Length(0, 200),
		),
		validation.Field(&r.MessengerHandle,
			validation.When(method == inquiryDomain.ContactMessenger, validation.Required),
			customValidation.NoControlChars,
			validation.Length(0, 100),
		),
		validation.Field(&r.Message,
			customValidation.NoControlChars,
			validation.Length(0, 5000),
		),
		validation.Field(&r.Treatment, validation.Length(0, 200)),
		validation.Field(&r.Destination, validation.Length(0, 200)),
		validation.Field(&r.Language, validation.Length(0, 35)),
		validation.Field(&r.Consent,
			validation.By(func(value interface{}) error {
				if consent, _ := value.(bool); !consent {
					return validation.NewError("validation_consent", "must be given")
				}
				return nil
			}),
		),
	)
}

// ToInput converts the request to a domain input with surrounding whitespace trimmed
// and the email lower-cased.
func (r *SubmitInquiryRequest) ToInput() *inquiryDomain.SubmitInquiryInput {
	return &inquiryDomain.SubmitInquiryInput{
		FullName:        strings.TrimSpace(r.FullName),
		Email:           strings.ToLower(strings.TrimSpace(r.Email)),
		Phone:           strings.TrimSpace(r.Phone),
		WhatsApp:        strings.TrimSpace(r.WhatsApp),
		ContactMethod:   inquiryDomain.ContactMethod(r.ContactMethod),
		ContactID:       strings.TrimSpace(r.ContactID),
		MessengerHandle: strings.TrimSpace(r.MessengerHandle),
		Message:         strings.TrimSpace(r.Message),
		Treatment:       strings.TrimSpace(r.Treatment),
		Destination:     strings.TrimSpace(r.Destination),
		Language:        strings.TrimSpace(r.Language),
		Consent:         r.Consent,
	}
}
