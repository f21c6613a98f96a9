package output

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Ext is the extension of every badge file.
const Ext = ".svg"

// Dir is a directory of badge files.
type Dir struct {
	path   string
	logger *log.Logger
}

// NewDir returns a Dir rooted at path. Nothing is created until Ensure.
func NewDir(path string, logger *log.Logger) *Dir {
	return &Dir{path: path, logger: logger}
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// Ensure creates the directory if it does not exist.
func (d *Dir) Ensure() error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("create badge dir %s: %w", d.path, err)
	}
	return nil
}

// Clear removes every badge file in the directory and returns how many were
// removed. Other files and subdirectories are left alone. A file that cannot
// be removed is logged and skipped.
func (d *Dir) Clear() (int, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return 0, fmt.Errorf("list badge dir %s: %w", d.path, err)
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		if err := os.Remove(filepath.Join(d.path, e.Name())); err != nil {
			d.logger.Printf("remove old badge failed (file=%s): %v", e.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}

// Write stores data as <stem>.svg, replacing any existing file, and returns
// the file path.
func (d *Dir) Write(stem string, data []byte) (string, error) {
	path := filepath.Join(d.path, stem+Ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return path, fmt.Errorf("write badge %s: %w", path, err)
	}
	return path, nil
}
