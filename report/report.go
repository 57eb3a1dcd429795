package report

import (
	"errors"
	"math"
	"time"
)

// ErrReportWrite wraps any I/O failure while writing report files. Reports
// are the run's only durable output, so callers treat it as fatal.
var ErrReportWrite = errors.New("report write failed")

// Status is the lifecycle state of one folder within a run.
type Status string

const (
	StatusScanned       Status = "OK"
	StatusSizeFailed    Status = "SIZE_FAILED"
	StatusSkippedBucket Status = "SKIPPED_BUCKET"
	StatusMissing       Status = "MISSING"
	StatusSkipExists    Status = "SKIP_EXISTS"
	StatusSkipLocked    Status = "SKIP_LOCKED_ARCHIVE"
	StatusArchived      Status = "ARCHIVED"
	StatusArchiveFailed Status = "ARCHIVE_FAILED"
	StatusDeleted       Status = "DELETED"
	StatusDeleteFailed  Status = "DELETE_FAILED"
)

// FolderRecord is the outcome of one source subfolder. It is created at scan
// time, updated once with the archive outcome, and immutable afterwards.
type FolderRecord struct {
	Name            string  `json:"name"`
	Path            string  `json:"folder"`
	SizeBytes       int64   `json:"size_bytes"` // -1 when the size scan failed
	SizeGB          float64 `json:"size_gb"`
	Bucket          string  `json:"bucket"`
	Status          Status  `json:"status"`
	ArchivePath     string  `json:"archive,omitempty"`
	ArchiveOK       bool    `json:"archive_ok"`
	Note            string  `json:"note,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// RunReport accumulates all per-folder outcomes of one execution, in
// enumeration order, plus run-level totals. It lives for exactly one run and
// is flushed to disk at the end.
type RunReport struct {
	Stamp            string         `json:"stamp"`
	Source           string         `json:"source"`
	OutDir           string         `json:"out"`
	Records          []FolderRecord `json:"records"`
	TotalInputBytes  int64          `json:"total_input_bytes"`
	TotalOutputBytes int64          `json:"total_output_bytes"`
}

// Stamp formats the shared run timestamp used in every report filename.
// It is computed once at run start and threaded explicitly, never re-read.
func Stamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// New returns an empty report for one run.
func New(stamp, source, outDir string) *RunReport {
	return &RunReport{
		Stamp:  stamp,
		Source: source,
		OutDir: outDir,
	}
}

// Append adds a record in arrival order.
func (r *RunReport) Append(rec FolderRecord) {
	r.Records = append(r.Records, rec)
	if rec.SizeBytes > 0 {
		r.TotalInputBytes += rec.SizeBytes
	}
}

// Len returns the number of accumulated records.
func (r *RunReport) Len() int {
	return len(r.Records)
}

// Counts returns how many folders ended the run archived (including
// skip-existing, which means an archive is present) and how many failed
// either their size scan or their archive attempt.
func (r *RunReport) Counts() (succeeded, failed int) {
	for _, rec := range r.Records {
		switch rec.Status {
		case StatusArchived, StatusDeleted, StatusSkipExists:
			succeeded++
		case StatusSizeFailed, StatusArchiveFailed, StatusDeleteFailed:
			failed++
		}
	}
	return succeeded, failed
}

// GBFor converts bytes to GiB rounded to two decimals, the unit every
// human-facing report column uses.
func GBFor(bytes int64) float64 {
	if bytes < 0 {
		return 0
	}
	return math.Round(float64(bytes)/float64(1<<30)*100) / 100
}
