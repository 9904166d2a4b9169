package models

import "time"

// ReportStatus tracks the lifecycle of an impact-report job.
type ReportStatus string

// Possible report statuses.
const (
	ReportStatusPending    ReportStatus = "PENDING"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusCompleted  ReportStatus = "COMPLETED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// ReportFormat enumerates supported export encodings.
type ReportFormat string

// Supported formats.
const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportJob describes one asynchronous event impact export.
type ReportJob struct {
	ID          string       `db:"id" json:"id"`
	EventID     string       `db:"event_id" json:"event_id"`
	Format      ReportFormat `db:"format" json:"format"`
	Status      ReportStatus `db:"status" json:"status"`
	FilePath    string       `db:"file_path" json:"-"`
	RequestedBy string       `db:"requested_by" json:"requested_by"`
	Error       *string      `db:"error" json:"error,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	CompletedAt *time.Time   `db:"completed_at" json:"completed_at,omitempty"`
}
