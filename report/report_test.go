package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleReport(outDir string) *RunReport {
	r := New("20260829_120000", "/data/src", outDir)
	r.Append(FolderRecord{
		Name:      "A",
		Path:      "/data/src/A",
		SizeBytes: 2 << 30,
		SizeGB:    2.0,
		Bucket:    "1-10 GB",
		Status:    StatusArchived,
		ArchiveOK: true,
	})
	r.Append(FolderRecord{
		Name:      "B",
		Path:      "/data/src/B",
		SizeBytes: 15 << 30,
		SizeGB:    15.0,
		Bucket:    "10-50 GB",
		Status:    StatusArchiveFailed,
		Note:      "zstd exited 1",
	})
	r.Append(FolderRecord{
		Name:      "C",
		Path:      "/data/src/C",
		SizeBytes: -1,
		Bucket:    "Unknown",
		Status:    StatusSizeFailed,
	})
	return r
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestStamp(t *testing.T) {
	ts := time.Date(2026, 8, 29, 13, 45, 7, 0, time.UTC)
	if got := Stamp(ts); got != "20260829_134507" {
		t.Errorf("Stamp() = %q, want 20260829_134507", got)
	}
}

func TestWriteScanProducesAllFormats(t *testing.T) {
	out := t.TempDir()
	r := sampleReport(out)

	if err := r.WriteScan(); err != nil {
		t.Fatalf("WriteScan() error = %v", err)
	}

	for _, name := range []string{
		"scan_20260829_120000.csv",
		"scan_20260829_120000.json",
		"scan_20260829_120000.txt",
	} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing report file %s: %v", name, err)
		}
	}

	rows := readCSV(t, filepath.Join(out, "scan_20260829_120000.csv"))
	if len(rows) != 4 {
		t.Fatalf("scan csv has %d rows, want header + 3 records", len(rows))
	}
	wantHeader := []string{"folder", "name", "size_gb", "bucket", "status"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("scan csv header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}
	// The failed scan renders an empty size field, not 0.00.
	if rows[3][2] != "" {
		t.Errorf("SIZE_FAILED row size_gb = %q, want empty", rows[3][2])
	}

	var decoded RunReport
	data, _ := os.ReadFile(filepath.Join(out, "scan_20260829_120000.json"))
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("scan json unparseable: %v", err)
	}
	if len(decoded.Records) != 3 {
		t.Errorf("scan json has %d records, want 3", len(decoded.Records))
	}
}

func TestWriteGroupedOrdering(t *testing.T) {
	out := t.TempDir()
	r := New("20260829_120000", "/src", out)
	// Append deliberately out of bucket order.
	r.Append(FolderRecord{Name: "big", SizeBytes: 15 << 30, SizeGB: 15, Bucket: "10-50 GB", Status: StatusScanned})
	r.Append(FolderRecord{Name: "small", SizeBytes: 1 << 28, SizeGB: 0.25, Bucket: "<1 GB", Status: StatusScanned})
	r.Append(FolderRecord{Name: "bigger", SizeBytes: 40 << 30, SizeGB: 40, Bucket: "10-50 GB", Status: StatusScanned})
	r.Append(FolderRecord{Name: "unknown", SizeBytes: -1, Bucket: "Unknown", Status: StatusSizeFailed})

	if err := r.WriteGrouped(); err != nil {
		t.Fatalf("WriteGrouped() error = %v", err)
	}

	rows := readCSV(t, filepath.Join(out, "grouped_scan_20260829_120000.csv"))
	gotNames := []string{rows[1][2], rows[2][2], rows[3][2], rows[4][2]}
	wantNames := []string{"small", "bigger", "big", "unknown"}
	for i := range wantNames {
		if gotNames[i] != wantNames[i] {
			t.Errorf("grouped row %d = %q, want %q (bucket order, size desc)", i, gotNames[i], wantNames[i])
		}
	}
}

func TestWriteArchiveLog(t *testing.T) {
	out := t.TempDir()
	r := sampleReport(out)

	if err := r.WriteArchiveLog(); err != nil {
		t.Fatalf("WriteArchiveLog() error = %v", err)
	}

	rows := readCSV(t, filepath.Join(out, "archive_log_20260829_120000.csv"))
	if len(rows) != 4 {
		t.Fatalf("archive log has %d rows, want header + 3", len(rows))
	}
	if rows[1][4] != "true" {
		t.Errorf("archived row archive_ok = %q, want true", rows[1][4])
	}
	if rows[2][4] != "false" {
		t.Errorf("failed row archive_ok = %q, want false", rows[2][4])
	}
	if rows[2][7] != "zstd exited 1" {
		t.Errorf("failed row note = %q, want the recorded failure", rows[2][7])
	}
}

func TestWriteTotals(t *testing.T) {
	out := t.TempDir()
	r := sampleReport(out)
	r.TotalOutputBytes = r.TotalInputBytes / 2

	if err := r.WriteTotals(); err != nil {
		t.Fatalf("WriteTotals() error = %v", err)
	}

	rows := readCSV(t, filepath.Join(out, "input_vs_output_20260829_120000.csv"))
	if rows[1][4] != "0.500" {
		t.Errorf("compression_ratio = %q, want 0.500", rows[1][4])
	}
}

func TestWriteTotalsEmptyRun(t *testing.T) {
	out := t.TempDir()
	r := New("20260829_120000", "/src", out)

	if err := r.WriteTotals(); err != nil {
		t.Fatalf("WriteTotals() error = %v", err)
	}
	rows := readCSV(t, filepath.Join(out, "input_vs_output_20260829_120000.csv"))
	if rows[1][4] != "" || rows[1][5] != "" {
		t.Errorf("empty run must leave ratio and saved blank, got %q / %q", rows[1][4], rows[1][5])
	}
}

func TestDistinctStampsDistinctFiles(t *testing.T) {
	out := t.TempDir()

	first := New("20260829_120000", "/src", out)
	second := New("20260829_120001", "/src", out)
	if err := first.WriteScan(); err != nil {
		t.Fatalf("first WriteScan() error = %v", err)
	}
	if err := second.WriteScan(); err != nil {
		t.Fatalf("second WriteScan() error = %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(out, "scan_*.csv"))
	if len(matches) != 2 {
		t.Errorf("expected 2 scan csv files for 2 runs, found %d", len(matches))
	}
}

func TestWriteScanUnwritableDir(t *testing.T) {
	r := New("20260829_120000", "/src", filepath.Join(string(os.PathSeparator), "proc", "zstow-cannot-write-here"))
	err := r.WriteScan()
	if !errors.Is(err, ErrReportWrite) {
		t.Errorf("WriteScan() error = %v, want ErrReportWrite", err)
	}
}

func TestCloseReportSurfacesCloseError(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "scan.csv"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if err := closeReport(f, f.Name(), nil); !errors.Is(err, ErrReportWrite) {
		t.Errorf("closeReport() error = %v, want ErrReportWrite", err)
	}

	writeErr := errors.New("write failed")
	if err := closeReport(f, f.Name(), writeErr); !errors.Is(err, writeErr) {
		t.Errorf("closeReport() error = %v, want the write error to win", err)
	}
}

func TestCounts(t *testing.T) {
	r := sampleReport(t.TempDir())
	succeeded, failed := r.Counts()
	if succeeded != 1 || failed != 2 {
		t.Errorf("Counts() = %d, %d, want 1 succeeded and 2 failed", succeeded, failed)
	}
}

func TestGBFor(t *testing.T) {
	if got := GBFor(2 << 30); got != 2.0 {
		t.Errorf("GBFor(2GiB) = %v, want 2.0", got)
	}
	if got := GBFor(1 << 29); got != 0.5 {
		t.Errorf("GBFor(512MiB) = %v, want 0.5", got)
	}
	if got := GBFor(-1); got != 0 {
		t.Errorf("GBFor(-1) = %v, want 0", got)
	}
}

func TestSummaryContainsBuckets(t *testing.T) {
	r := sampleReport(t.TempDir())
	s := r.Summary()
	for _, want := range []string{"Bucket Summary", "1-10 GB", "10-50 GB", "Unknown"} {
		if !strings.Contains(s, want) {
			t.Errorf("Summary() missing %q", want)
		}
	}
}
