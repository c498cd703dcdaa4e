package dto

import (
	"time"

	inquiryDomain "github.com/healo/piiguard/internal/inquiry/domain"
)

// InquirySummaryResponse is an inquiry with its protected fields masked.
type InquirySummaryResponse struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	Summary   map[string]any `json:"summary"`
	CreatedAt time.Time      `json:"created_at"`
}

// InquiryDetailResponse is an inquiry with its document decrypted.
type InquiryDetailResponse struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	Document  map[string]any `json:"document"`
	CreatedAt time.Time      `json:"created_at"`
}

// SubmitInquiryResponse acknowledges a submission without echoing its content.
type SubmitInquiryResponse struct {
	OK        bool      `json:"ok"`
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// ListInquiriesResponse is a page of summaries.
type ListInquiriesResponse struct {
	OK   bool                     `json:"ok"`
	Data []InquirySummaryResponse `json:"data"`
}

// GetInquiryResponse wraps one decrypted inquiry.
type GetInquiryResponse struct {
	OK   bool                  `json:"ok"`
	Data InquiryDetailResponse `json:"data"`
}

// ExportInquiriesResponse is a decrypted batch.
type ExportInquiriesResponse struct {
	OK    bool                    `json:"ok"`
	Count int                     `json:"count"`
	Data  []InquiryDetailResponse `json:"data"`
}

// MapInquiryToSubmitResponse converts a stored inquiry to a submission acknowledgement.
func MapInquiryToSubmitResponse(inquiry *inquiryDomain.Inquiry) SubmitInquiryResponse {
	return SubmitInquiryResponse{
		OK:        true,
		ID:        inquiry.ID.String(),
		CreatedAt: inquiry.CreatedAt,
	}
}

// MapInquiriesToListResponse converts summaries to a list response.
func MapInquiriesToListResponse(inquiries []*inquiryDomain.Inquiry) ListInquiriesResponse {
	data := make([]InquirySummaryResponse, 0, len(inquiries))
	for _, inquiry := range inquiries {
		data = append(data, InquirySummaryResponse{
			ID:        inquiry.ID.String(),
			Status:    string(inquiry.Status),
			Summary:   inquiry.Summary,
			CreatedAt: inquiry.CreatedAt,
		})
	}
	return ListInquiriesResponse{OK: true, Data: data}
}

// MapInquiryToDetail converts a decrypted inquiry to a detail response.
func MapInquiryToDetail(inquiry *inquiryDomain.Inquiry) InquiryDetailResponse {
	return InquiryDetailResponse{
		ID:        inquiry.ID.String(),
		Status:    string(inquiry.Status),
		Document:  inquiry.Document,
		CreatedAt: inquiry.CreatedAt,
	}
}

// MapInquiriesToExportResponse converts decrypted inquiries to an export response.
func MapInquiriesToExportResponse(inquiries []*inquiryDomain.Inquiry) ExportInquiriesResponse {
	data := make([]InquiryDetailResponse, 0, len(inquiries))
	for _, inquiry := range inquiries {
		data = append(data, MapInquiryToDetail(inquiry))
	}
	return ExportInquiriesResponse{OK: true, Count: len(data), Data: data}
}
