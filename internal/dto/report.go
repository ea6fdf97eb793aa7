package dto

import (
	"time"

	"github.com/diegocaceres21/saae-discount-api/internal/models"
)

// ReportRequest enqueues a registry export for a committed request.
type ReportRequest struct {
	RequestID string              `json:"request_id" validate:"required"`
	Format    models.ReportFormat `json:"format" validate:"required,oneof=csv pdf"`
}

// ReportJobResponse returns job identity and state.
type ReportJobResponse struct {
	ID     string              `json:"id"`
	Status models.ReportStatus `json:"status"`
}

// ReportStatusResponse carries full job metadata plus the download token once
// the job is done.
type ReportStatusResponse struct {
	ID           string              `json:"id"`
	RequestID    string              `json:"request_id"`
	Format       models.ReportFormat `json:"format"`
	Status       models.ReportStatus `json:"status"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	DownloadURL  string              `json:"download_url,omitempty"`
	ExpiresAt    *time.Time          `json:"expires_at,omitempty"`
}

// ResolvePaymentRequest answers a manual-payment prompt.
type ResolvePaymentRequest struct {
	Reference string  `json:"reference"`
	Plan      string  `json:"plan" validate:"omitempty,oneof='PLAN ESTANDAR' 'PLAN PLUS'"`
	Amount    float64 `json:"amount" validate:"gte=0"`
}

// ResolveCareerRequest answers a career prompt with a candidate ID.
type ResolveCareerRequest struct {
	CareerID string `json:"career_id" validate:"required"`
}
