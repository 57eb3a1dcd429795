package scan

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/zstow/zstow/execx"
)

// runFunc matches execx.Run and is swapped out in tests.
type runFunc func(name string, args ...string) (execx.Result, error)

// Sizer measures the total byte size of a directory tree without copying or
// reading file contents.
type Sizer interface {
	Size(path string) (int64, error)
}

// NewSizer selects a sizer implementation by tool name. An empty name picks
// the platform default: robocopy on Windows, du everywhere else.
func NewSizer(tool string) (Sizer, error) {
	switch tool {
	case "":
		if runtime.GOOS == "windows" {
			return NewRobocopySizer(), nil
		}
		return NewDuSizer(), nil
	case "du":
		return NewDuSizer(), nil
	case "robocopy":
		return NewRobocopySizer(), nil
	default:
		return nil, fmt.Errorf("unknown size tool %q (want du or robocopy)", tool)
	}
}

// DuSizer measures directories with du. It prefers `du -sb` for an exact byte
// count and falls back to `du -sk` (1 KiB blocks) on platforms whose du lacks
// the -b flag, such as macOS.
type DuSizer struct {
	run runFunc
}

// NewDuSizer returns a DuSizer backed by real subprocess execution.
func NewDuSizer() *DuSizer {
	return &DuSizer{run: execx.Run}
}

// Size returns the total size of path in bytes.
func (d *DuSizer) Size(path string) (int64, error) {
	res, err := d.run("du", "-sb", path)
	if err != nil {
		return 0, fmt.Errorf("%w: du: %w", ErrScanFailed, err)
	}
	if res.ExitCode == 0 {
		return parseDuSize(res.Stdout, 1)
	}

	// BSD du has no -b; retry in 1 KiB blocks.
	res, err = d.run("du", "-sk", path)
	if err != nil {
		return 0, fmt.Errorf("%w: du: %w", ErrScanFailed, err)
	}
	if res.ExitCode != 0 {
		return 0, fmt.Errorf("%w: du exited %d: %s", ErrScanFailed, res.ExitCode, firstLine(res.Stderr))
	}
	return parseDuSize(res.Stdout, 1024)
}

// parseDuSize extracts the leading size field from du's summary line and
// scales it by unit bytes.
func parseDuSize(out string, unit int64) (int64, error) {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: empty du output", ErrScanFailed)
	}
	n, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable du output %q", ErrScanFailed, fields[0])
	}
	return n * unit, nil
}

// RobocopySizer measures directories with robocopy's list-only mode
// (`/L /S /BYTES`), which enumerates the tree and prints a byte total
// without copying anything.
type RobocopySizer struct {
	run runFunc
}

// NewRobocopySizer returns a RobocopySizer backed by real subprocess execution.
func NewRobocopySizer() *RobocopySizer {
	return &RobocopySizer{run: execx.Run}
}

var robocopyBytesRE = regexp.MustCompile(`(?i)Bytes\s*:\s*([\d,]+)`)

// Size returns the total size of path in bytes.
//
// Robocopy exit codes 0-7 are informational successes; 8 and above signal
// real failures.
func (r *RobocopySizer) Size(path string) (int64, error) {
	res, err := r.run("robocopy", path, os.TempDir(),
		"/L", "/S", "/BYTES", "/NP", "/NFL", "/NDL", "/NJH")
	if err != nil {
		return 0, fmt.Errorf("%w: robocopy: %w", ErrScanFailed, err)
	}
	if res.ExitCode >= 8 || res.ExitCode < 0 {
		return 0, fmt.Errorf("%w: robocopy exited %d: %s", ErrScanFailed, res.ExitCode, firstLine(res.Stderr))
	}
	return parseRobocopyBytes(res.Stdout + "\n" + res.Stderr)
}

// parseRobocopyBytes finds the "Bytes :" summary line and returns its total
// column, stripping thousands separators.
func parseRobocopyBytes(out string) (int64, error) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "bytes") {
			continue
		}
		m := robocopyBytesRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: unparseable byte count %q", ErrScanFailed, m[1])
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: no Bytes summary line in robocopy output", ErrScanFailed)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
