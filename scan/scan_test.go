package scan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFolders(t *testing.T) {
	src := t.TempDir()

	for _, name := range []string{"beta", "Alpha", "gamma"} {
		if err := os.Mkdir(filepath.Join(src, name), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
	}
	// Plain files must not be enumerated.
	if err := os.WriteFile(filepath.Join(src, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	out := filepath.Join(src, "archives")
	if err := os.Mkdir(out, 0755); err != nil {
		t.Fatalf("mkdir out: %v", err)
	}

	folders, err := Folders(src, out)
	if err != nil {
		t.Fatalf("Folders() error = %v", err)
	}

	want := []string{"Alpha", "beta", "gamma"}
	if len(folders) != len(want) {
		t.Fatalf("Folders() returned %d folders, want %d", len(folders), len(want))
	}
	for i, f := range folders {
		if f.Name != want[i] {
			t.Errorf("Folders()[%d].Name = %q, want %q (case-insensitive order)", i, f.Name, want[i])
		}
		if f.Path != filepath.Join(src, want[i]) {
			t.Errorf("Folders()[%d].Path = %q, want %q", i, f.Path, filepath.Join(src, want[i]))
		}
	}
}

func TestFoldersSeparateOutputDir(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir() // not nested under src

	if err := os.Mkdir(filepath.Join(src, "data"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	folders, err := Folders(src, out)
	if err != nil {
		t.Fatalf("Folders() error = %v", err)
	}
	if len(folders) != 1 || folders[0].Name != "data" {
		t.Errorf("Folders() = %v, want single folder 'data'", folders)
	}
}

func TestFoldersMissingSource(t *testing.T) {
	_, err := Folders(filepath.Join(t.TempDir(), "nope"), t.TempDir())
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("Folders() error = %v, want ErrSourceNotFound", err)
	}
}

func TestFoldersSourceIsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := Folders(file, dir)
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("Folders() error = %v, want ErrSourceNotFound", err)
	}
}

func TestFoldersEmptySource(t *testing.T) {
	folders, err := Folders(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("Folders() error = %v", err)
	}
	if len(folders) != 0 {
		t.Errorf("Folders() = %v, want empty", folders)
	}
}
