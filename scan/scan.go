package scan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Sentinel errors for package scan.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// ErrSourceNotFound means the source path is missing or not a directory.
	// This is fatal to a run.
	ErrSourceNotFound = errors.New("source directory not found")

	// ErrScanFailed means the external size tool reported an unexpected exit.
	// Per-folder and non-fatal: the folder is reported but not archived.
	ErrScanFailed = errors.New("size scan failed")
)

// Folder is one immediate subfolder of the source directory.
type Folder struct {
	Name string
	Path string
}

// Folders returns the immediate subdirectories of source, sorted
// case-insensitively by name. The output directory is excluded when it lives
// inside source, so a previous run's archives are never archived again.
func Folders(source, out string) ([]Folder, error) {
	info, err := os.Stat(source)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, source)
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSourceNotFound, source)
	}

	outAbs, err := filepath.Abs(out)
	if err != nil {
		outAbs = out
	}

	entries, err := os.ReadDir(source)
	if err != nil {
		return nil, err
	}

	var folders []Folder
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(source, entry.Name())
		if abs, absErr := filepath.Abs(path); absErr == nil && abs == outAbs {
			continue
		}
		folders = append(folders, Folder{Name: entry.Name(), Path: path})
	}

	sort.Slice(folders, func(i, j int) bool {
		return strings.ToLower(folders[i].Name) < strings.ToLower(folders[j].Name)
	})

	return folders, nil
}
