package dto

import "time"

// ImportJobState tracks an asynchronous import's lifecycle.
type ImportJobState string

// Possible job states.
const (
	ImportJobPending   ImportJobState = "PENDING"
	ImportJobRunning   ImportJobState = "RUNNING"
	ImportJobCompleted ImportJobState = "COMPLETED"
	ImportJobFailed    ImportJobState = "FAILED"
)

// RowFailure records one skipped spreadsheet row. RowNumber is 1-based and
// counts the header row, matching what staff see in the sheet itself.
type RowFailure struct {
	RowNumber int    `json:"row_number"`
	Error     string `json:"error"`
}

// ImportReport summarises a purge-and-reload run. Per-row failures do not fail
// the batch; Aborted marks a run cancelled mid-way, with already committed rows
// left in place.
type ImportReport struct {
	TotalRows     int          `json:"total_rows"`
	Imported      int          `json:"imported"`
	Failed        int          `json:"failed"`
	SkippedLines  int          `json:"skipped_lines"`
	Failures      []RowFailure `json:"failures,omitempty"`
	Aborted       bool         `json:"aborted"`
	PurgeDuration string       `json:"purge_duration,omitempty"`
	StartedAt     time.Time    `json:"started_at"`
	FinishedAt    time.Time    `json:"finished_at"`
}

// ImportJob is the status envelope for asynchronous imports.
type ImportJob struct {
	ID         string         `json:"id"`
	State      ImportJobState `json:"state"`
	Source     string         `json:"source"`
	Report     *ImportReport  `json:"report,omitempty"`
	Error      string         `json:"error,omitempty"`
	EnqueuedAt time.Time      `json:"enqueued_at"`
}

// SheetImportRequest triggers an import from the configured Google spreadsheet.
type SheetImportRequest struct {
	SheetName string `json:"sheet_name"`
	Async     bool   `json:"async"`
}
