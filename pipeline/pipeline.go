package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/zstow/zstow/archive"
	"github.com/zstow/zstow/bucket"
	"github.com/zstow/zstow/report"
	"github.com/zstow/zstow/scan"
)

// Sizer measures one folder; see scan.Sizer.
type Sizer interface {
	Size(path string) (int64, error)
}

// Archiver writes one archive; see archive.Archiver.
type Archiver interface {
	Create(dir, dest string) error
}

// Options configures one run.
type Options struct {
	Source string
	OutDir string

	// StartBucket and MaxBucket bound which buckets are archived; folders
	// outside the range are reported as SKIPPED_BUCKET.
	StartBucket string
	MaxBucket   string

	ScanOnly     bool
	SkipExisting bool
	DeleteAfter  bool
	Retries      int
	RetrySleep   time.Duration
	WriteTotals  bool

	// Progress receives the human-readable run narration. Defaults to
	// os.Stdout.
	Progress io.Writer
}

// Pipeline executes one scan-bucket-archive-report run, strictly
// sequentially: each folder is fully handled before the next begins.
type Pipeline struct {
	opts     Options
	sizer    Sizer
	archiver Archiver
	sleep    func(time.Duration)
}

// New assembles a pipeline. archiver may be nil when opts.ScanOnly is set.
func New(opts Options, sizer Sizer, archiver Archiver) *Pipeline {
	if opts.Progress == nil {
		opts.Progress = os.Stdout
	}
	if opts.Retries < 1 {
		opts.Retries = 1
	}
	return &Pipeline{
		opts:     opts,
		sizer:    sizer,
		archiver: archiver,
		sleep:    time.Sleep,
	}
}

// Run executes the pipeline. start supplies the shared run timestamp. The
// returned error is non-nil only for fatal conditions (missing source,
// report write failure); per-folder scan and archive failures are recorded
// in the report and the run continues.
func (p *Pipeline) Run(start time.Time) (*report.RunReport, error) {
	folders, err := scan.Folders(p.opts.Source, p.opts.OutDir)
	if err != nil {
		return nil, err
	}
	if len(folders) == 0 {
		slog.Warn("no subfolders found", "source", p.opts.Source)
		fmt.Fprintf(p.opts.Progress, "No subfolders found in: %s\n", p.opts.Source)
	}

	rep := report.New(report.Stamp(start), p.opts.Source, p.opts.OutDir)

	p.scanPhase(rep, folders)

	if err := rep.WriteScan(); err != nil {
		return rep, err
	}
	if err := rep.WriteGrouped(); err != nil {
		return rep, err
	}

	fmt.Fprintln(p.opts.Progress)
	fmt.Fprint(p.opts.Progress, rep.Summary())

	if !p.opts.ScanOnly {
		p.archivePhase(rep)
		if err := rep.WriteArchiveLog(); err != nil {
			return rep, err
		}
	}

	rep.TotalOutputBytes = archive.TotalBytes(p.opts.OutDir)
	if p.opts.WriteTotals {
		if err := rep.WriteTotals(); err != nil {
			return rep, err
		}
		p.printTotals(rep)
	}

	succeeded, failed := rep.Counts()
	fmt.Fprintf(p.opts.Progress, "\ndone: %d folders, %d succeeded, %d failed\n",
		rep.Len(), succeeded, failed)

	return rep, nil
}

// scanPhase measures every folder and appends one record each, in
// enumeration order. Scan failures are recorded, never fatal.
func (p *Pipeline) scanPhase(rep *report.RunReport, folders []scan.Folder) {
	for _, f := range folders {
		begin := time.Now()
		size, err := p.sizer.Size(f.Path)
		elapsed := time.Since(begin).Seconds()

		if err != nil {
			slog.Warn("size scan failed", "folder", f.Name, "error", err)
			fmt.Fprintf(p.opts.Progress, "SCAN SIZE_FAILED: %s\n", f.Name)
			rep.Append(report.FolderRecord{
				Name:            f.Name,
				Path:            f.Path,
				SizeBytes:       -1,
				Bucket:          bucket.Unknown,
				Status:          report.StatusSizeFailed,
				Note:            err.Error(),
				DurationSeconds: elapsed,
			})
			continue
		}

		label := bucket.ForSize(size)
		fmt.Fprintf(p.opts.Progress, "SCAN OK: %s (%.2f GB)\n", f.Name, report.GBFor(size))
		rep.Append(report.FolderRecord{
			Name:            f.Name,
			Path:            f.Path,
			SizeBytes:       size,
			SizeGB:          report.GBFor(size),
			Bucket:          label,
			Status:          report.StatusScanned,
			DurationSeconds: elapsed,
		})
	}
}

// archivePhase walks the configured bucket range in canonical order,
// smallest folders first within each bucket, and archives every successfully
// scanned folder. Records left untouched afterwards were outside the range.
func (p *Pipeline) archivePhase(rep *report.RunReport) {
	labels := bucket.Range(p.opts.StartBucket, p.opts.MaxBucket)
	fmt.Fprintf(p.opts.Progress, "\nBuckets to archive: %v\n", labels)

	for _, label := range labels {
		indices := p.bucketMembers(rep, label)
		if len(indices) == 0 {
			continue
		}

		var totalGB float64
		for _, i := range indices {
			totalGB += rep.Records[i].SizeGB
		}
		fmt.Fprintf(p.opts.Progress, "\n[%s] folders=%d total~%.2f GB\n", label, len(indices), totalGB)

		for _, i := range indices {
			p.archiveFolder(&rep.Records[i])
		}
	}

	// Anything still in scanned state sat outside the bucket range.
	for i := range rep.Records {
		if rep.Records[i].Status == report.StatusScanned {
			rep.Records[i].Status = report.StatusSkippedBucket
		}
	}
}

// bucketMembers returns the indices of scanned records in the given bucket,
// size ascending so small folders archive first.
func (p *Pipeline) bucketMembers(rep *report.RunReport, label string) []int {
	var indices []int
	for i, rec := range rep.Records {
		if rec.Bucket == label && rec.Status == report.StatusScanned {
			indices = append(indices, i)
		}
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return rep.Records[indices[a]].SizeBytes < rep.Records[indices[b]].SizeBytes
	})
	return indices
}

// archiveFolder runs the skip checks and the retry loop for one folder,
// mutating its record exactly once with the final outcome.
func (p *Pipeline) archiveFolder(rec *report.FolderRecord) {
	dest := filepath.Join(p.opts.OutDir, rec.Name+archive.Ext)

	if _, err := os.Stat(rec.Path); os.IsNotExist(err) {
		fmt.Fprintf(p.opts.Progress, "  SKIP missing: %s\n", rec.Name)
		rec.Status = report.StatusMissing
		return
	}

	if p.opts.SkipExisting && archive.Exists(dest) {
		slog.Debug("archive already present", "folder", rec.Name, "archive", dest)
		fmt.Fprintf(p.opts.Progress, "  SKIP_EXISTS: %s\n", rec.Name)
		rec.Status = report.StatusSkipExists
		rec.ArchivePath = dest
		rec.ArchiveOK = true
		return
	}

	if archive.Locked(dest) {
		slog.Debug("archive locked by another process", "folder", rec.Name, "archive", dest)
		fmt.Fprintf(p.opts.Progress, "  SKIP_LOCKED_ARCHIVE: %s\n", rec.Name)
		rec.Status = report.StatusSkipLocked
		rec.ArchivePath = dest
		return
	}

	fmt.Fprintf(p.opts.Progress, "  ARCHIVING: %s (%.2f GB)\n", rec.Name, rec.SizeGB)

	begin := time.Now()
	var lastErr error
	for attempt := 1; attempt <= p.opts.Retries; attempt++ {
		lastErr = p.archiver.Create(rec.Path, dest)
		if lastErr == nil {
			break
		}
		slog.Warn("archive attempt failed",
			"folder", rec.Name, "attempt", attempt, "of", p.opts.Retries, "error", lastErr)
		if attempt < p.opts.Retries {
			p.sleep(p.opts.RetrySleep)
		}
	}
	rec.DurationSeconds += time.Since(begin).Seconds()
	rec.ArchivePath = dest

	if lastErr != nil {
		fmt.Fprintf(p.opts.Progress, "  ARCHIVE_FAILED: %s (%v)\n", rec.Name, lastErr)
		rec.Status = report.StatusArchiveFailed
		rec.Note = lastErr.Error()
		return
	}

	fmt.Fprintf(p.opts.Progress, "  ARCHIVED: %s -> %s\n", rec.Name, dest)
	rec.Status = report.StatusArchived
	rec.ArchiveOK = true

	if p.opts.DeleteAfter {
		if err := os.RemoveAll(rec.Path); err != nil {
			slog.Warn("delete after archive failed", "folder", rec.Name, "error", err)
			rec.Status = report.StatusDeleteFailed
			rec.Note = err.Error()
			return
		}
		fmt.Fprintf(p.opts.Progress, "  DELETED: %s\n", rec.Name)
		rec.Status = report.StatusDeleted
	}
}

func (p *Pipeline) printTotals(rep *report.RunReport) {
	fmt.Fprintf(p.opts.Progress, "\nTotal size check:\n")
	fmt.Fprintf(p.opts.Progress, "  input  (folders):  %.2f GB\n", report.GBFor(rep.TotalInputBytes))
	fmt.Fprintf(p.opts.Progress, "  output (archives): %.2f GB\n", report.GBFor(rep.TotalOutputBytes))
	if rep.TotalInputBytes > 0 {
		ratio := float64(rep.TotalOutputBytes) / float64(rep.TotalInputBytes)
		fmt.Fprintf(p.opts.Progress, "  compression ratio: %.3f\n", ratio)
		fmt.Fprintf(p.opts.Progress, "  saved:             %.2f GB\n",
			report.GBFor(rep.TotalInputBytes)-report.GBFor(rep.TotalOutputBytes))
	}
}
