package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/zstow/zstow/bucket"
)

// WriteScan writes the three scan outputs sharing the run stamp:
// scan_<stamp>.csv, scan_<stamp>.json and scan_<stamp>.txt.
func (r *RunReport) WriteScan() error {
	if err := os.MkdirAll(r.OutDir, 0755); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReportWrite, r.OutDir, err)
	}

	if err := r.writeScanCSV(r.path("scan", "csv")); err != nil {
		return err
	}
	if err := r.writeScanJSON(r.path("scan", "json")); err != nil {
		return err
	}
	return r.writeScanTXT(r.path("scan", "txt"))
}

func (r *RunReport) writeScanCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReportWrite, path, err)
	}
	w := csv.NewWriter(f)
	w.Write([]string{"folder", "name", "size_gb", "bucket", "status"})
	for _, rec := range r.Records {
		w.Write([]string{rec.Path, rec.Name, sizeGBField(rec), rec.Bucket, string(rec.Status)})
	}
	w.Flush()
	var werr error
	if err := w.Error(); err != nil {
		werr = fmt.Errorf("%w: %s: %w", ErrReportWrite, path, err)
	}
	return closeReport(f, path, werr)
}

func (r *RunReport) writeScanJSON(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReportWrite, path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	var werr error
	if err := enc.Encode(r); err != nil {
		werr = fmt.Errorf("%w: %s: %w", ErrReportWrite, path, err)
	}
	return closeReport(f, path, werr)
}

func (r *RunReport) writeScanTXT(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReportWrite, path, err)
	}
	var werr error
	for _, rec := range r.Records {
		if _, err := fmt.Fprintf(f, "%s\t%s\t%s\t%s\n",
			rec.Status, rec.Bucket, sizeGBField(rec), rec.Name); err != nil {
			werr = fmt.Errorf("%w: %s: %w", ErrReportWrite, path, err)
			break
		}
	}
	return closeReport(f, path, werr)
}

// WriteGrouped writes grouped_scan_<stamp>.csv with rows ordered by bucket
// (canonical order, Unknown last) and size descending within a bucket.
func (r *RunReport) WriteGrouped() error {
	path := r.path("grouped_scan", "csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReportWrite, path, err)
	}
	grouped := make([]FolderRecord, len(r.Records))
	copy(grouped, r.Records)
	sort.SliceStable(grouped, func(i, j int) bool {
		bi, bj := bucket.Index(grouped[i].Bucket), bucket.Index(grouped[j].Bucket)
		if bi != bj {
			return bi < bj
		}
		return grouped[i].SizeBytes > grouped[j].SizeBytes
	})

	w := csv.NewWriter(f)
	w.Write([]string{"bucket", "size_gb", "name", "folder", "status"})
	for _, rec := range grouped {
		w.Write([]string{rec.Bucket, sizeGBField(rec), rec.Name, rec.Path, string(rec.Status)})
	}
	w.Flush()
	var werr error
	if err := w.Error(); err != nil {
		werr = fmt.Errorf("%w: %s: %w", ErrReportWrite, path, err)
	}
	return closeReport(f, path, werr)
}

// WriteArchiveLog writes archive_log_<stamp>.csv with one row per folder
// reflecting its final archive outcome.
func (r *RunReport) WriteArchiveLog() error {
	path := r.path("archive_log", "csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReportWrite, path, err)
	}
	w := csv.NewWriter(f)
	w.Write([]string{"bucket", "folder", "archive", "size_gb", "archive_ok", "duration_seconds", "status", "note"})
	for _, rec := range r.Records {
		w.Write([]string{
			rec.Bucket,
			rec.Path,
			rec.ArchivePath,
			sizeGBField(rec),
			strconv.FormatBool(rec.ArchiveOK),
			strconv.FormatFloat(rec.DurationSeconds, 'f', 2, 64),
			string(rec.Status),
			rec.Note,
		})
	}
	w.Flush()
	var werr error
	if err := w.Error(); err != nil {
		werr = fmt.Errorf("%w: %s: %w", ErrReportWrite, path, err)
	}
	return closeReport(f, path, werr)
}

// WriteTotals writes input_vs_output_<stamp>.csv comparing total scanned
// input size against total archive output size.
func (r *RunReport) WriteTotals() error {
	path := r.path("input_vs_output", "csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReportWrite, path, err)
	}
	inputGB := GBFor(r.TotalInputBytes)
	outputGB := GBFor(r.TotalOutputBytes)
	ratio, saved := "", ""
	if r.TotalInputBytes > 0 {
		ratio = strconv.FormatFloat(float64(r.TotalOutputBytes)/float64(r.TotalInputBytes), 'f', 3, 64)
		saved = strconv.FormatFloat(inputGB-outputGB, 'f', 2, 64)
	}

	w := csv.NewWriter(f)
	w.Write([]string{"source", "out", "total_input_gb", "total_output_gb", "compression_ratio", "saved_gb"})
	w.Write([]string{
		r.Source,
		r.OutDir,
		strconv.FormatFloat(inputGB, 'f', 2, 64),
		strconv.FormatFloat(outputGB, 'f', 2, 64),
		ratio,
		saved,
	})
	w.Flush()
	var werr error
	if err := w.Error(); err != nil {
		werr = fmt.Errorf("%w: %s: %w", ErrReportWrite, path, err)
	}
	return closeReport(f, path, werr)
}

// closeReport closes f after a writer finishes. Buffered data may still be
// flushed at close time, so a close failure is a write failure; writeErr,
// when set, takes precedence.
func closeReport(f *os.File, path string, writeErr error) error {
	closeErr := f.Close()
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrReportWrite, path, closeErr)
	}
	return nil
}

func (r *RunReport) path(prefix, ext string) string {
	return filepath.Join(r.OutDir, fmt.Sprintf("%s_%s.%s", prefix, r.Stamp, ext))
}

// sizeGBField renders size_gb for CSV and text rows; folders whose scan
// failed get an empty field rather than a misleading zero.
func sizeGBField(rec FolderRecord) string {
	if rec.SizeBytes < 0 {
		return ""
	}
	return strconv.FormatFloat(rec.SizeGB, 'f', 2, 64)
}
