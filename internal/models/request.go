package models

import "time"

// RequestMode distinguishes the two registration paths.
type RequestMode string

const (
	RequestModeIndividual RequestMode = "individual"
	RequestModeBulk       RequestMode = "bulk"
)

// DiscountRequest is one committed pipeline submission: a sibling group (or
// an individually selected set) with its registry records.
type DiscountRequest struct {
	ID          string      `db:"id" json:"id"`
	Mode        RequestMode `db:"mode" json:"mode"`
	TargetTerms string      `db:"target_terms" json:"target_terms"`
	CreatedBy   string      `db:"created_by" json:"created_by"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	RecordCount int         `db:"record_count" json:"record_count"`
}

// RequestFilter encapsulates list parameters for committed requests.
type RequestFilter struct {
	Mode     RequestMode
	Term     string
	Page     int
	PageSize int
}

// ReportFormat enumerates supported registry export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportStatus tracks a registry export job.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "queued"
	ReportStatusProcessing ReportStatus = "processing"
	ReportStatusDone       ReportStatus = "done"
	ReportStatusFailed     ReportStatus = "failed"
)

// ReportJob is an asynchronous registry export.
type ReportJob struct {
	ID           string       `db:"id" json:"id"`
	RequestID    string       `db:"request_id" json:"request_id"`
	Format       ReportFormat `db:"format" json:"format"`
	Status       ReportStatus `db:"status" json:"status"`
	FilePath     *string      `db:"file_path" json:"-"`
	ErrorMessage *string      `db:"error_message" json:"error_message,omitempty"`
	CreatedBy    string       `db:"created_by" json:"created_by"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	StartedAt    *time.Time   `db:"started_at" json:"started_at,omitempty"`
	FinishedAt   *time.Time   `db:"finished_at" json:"finished_at,omitempty"`
}
