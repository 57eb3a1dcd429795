package archive

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/zstow/zstow/execx"
)

// Sentinel errors for package archive.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// ErrArchiveFailed means the tar or zstd stage exited non-zero.
	// Per-folder and non-fatal: the failure is recorded and the run continues.
	ErrArchiveFailed = errors.New("archive pipeline failed")

	// ErrMissingTool means tar or zstd was not found in PATH. Fatal: reported
	// before any folder is processed.
	ErrMissingTool = errors.New("required tool not found in PATH")
)

// Ext is the suffix of every archive this package writes.
const Ext = ".tar.zst"

// Options configures the zstd stage of the pipeline.
type Options struct {
	// Level is the zstd compression level, 1-19.
	Level int
	// Threads is the zstd worker count; 0 means all cores.
	Threads int
}

// Archiver writes one compressed archive per source folder by streaming
// `tar -cf - -C <dir> .` into `zstd -o <dest>`.
type Archiver struct {
	opts Options
}

// New returns an Archiver with the given options.
func New(opts Options) *Archiver {
	return &Archiver{opts: opts}
}

// CheckTools verifies that tar and zstd are available in PATH. It should run
// before any folder is processed so a missing toolchain fails the run early.
func CheckTools() error {
	var missing []string
	for _, tool := range []string{"tar", "zstd"} {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s (install zstd and ensure tar is available)",
			ErrMissingTool, strings.Join(missing, ", "))
	}
	return nil
}

// Create archives the contents of dir (not the directory itself) into dest.
//
// The stream is written to a uniquely named temp file next to dest and
// renamed into place only when both tar and zstd exit cleanly, so a partial
// archive never exists under the final name. On failure the temp file is
// removed and an error wrapping ErrArchiveFailed is returned.
func (a *Archiver) Create(dir, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	tmp := tmpPath(dest)
	defer os.Remove(tmp)

	tarCmd := exec.Command("tar", "-cf", "-", "-C", dir, ".")
	zstdCmd := exec.Command("zstd",
		fmt.Sprintf("-%d", a.opts.Level),
		fmt.Sprintf("-T%d", a.opts.Threads),
		"-q", "-f", "-o", tmp)

	tarRes, zstdRes, err := execx.Pipe(tarCmd, zstdCmd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}
	if tarRes.ExitCode != 0 {
		return fmt.Errorf("%w: tar exited %d: %s", ErrArchiveFailed, tarRes.ExitCode, firstLine(tarRes.Stderr))
	}
	if zstdRes.ExitCode != 0 {
		return fmt.Errorf("%w: zstd exited %d: %s", ErrArchiveFailed, zstdRes.ExitCode, firstLine(zstdRes.Stderr))
	}

	// Replace any stale archive under the final name atomically where the
	// platform allows.
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: replacing %s: %w", ErrArchiveFailed, dest, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("%w: committing %s: %w", ErrArchiveFailed, dest, err)
	}
	return nil
}

// tmpPath derives the temp file name used while an archive is being written.
func tmpPath(dest string) string {
	name := strings.TrimSuffix(filepath.Base(dest), Ext)
	return filepath.Join(filepath.Dir(dest),
		fmt.Sprintf("%s._tmp_%s%s", name, strings.ReplaceAll(uuid.New().String(), "-", ""), Ext))
}

// Exists reports whether a final archive is already present at dest.
func Exists(dest string) bool {
	_, err := os.Stat(dest)
	return err == nil
}

// Locked reports whether an existing file at path cannot be opened for
// appending, which on Windows means another process holds it open.
func Locked(path string) bool {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return true
	}
	f.Close()
	return false
}

// TotalBytes sums the sizes of all final archives directly inside dir.
// Unreadable entries are skipped, matching a best-effort totals report.
func TotalBytes(dir string) int64 {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+Ext))
	if err != nil {
		return 0
	}
	var total int64
	for _, m := range matches {
		info, statErr := os.Stat(m)
		if statErr != nil {
			continue
		}
		total += info.Size()
	}
	return total
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
