package syncer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// PathError reports which document failed to be written.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// WriteDocuments writes every document, creating parent directories.
func WriteDocuments(docs []Document) error {
	for _, doc := range docs {
		if err := atomicWriteToFile(doc.Path, []byte(doc.Content)); err != nil {
			return &PathError{Path: doc.Path, Err: err}
		}
		logDebug("[syncer] wrote %s (%d bytes)", doc.Path, len(doc.Content))
	}
	return nil
}

// PrintDocuments writes each document to w under a "--- <path> ---" line
// instead of touching the filesystem.
func PrintDocuments(w io.Writer, docs []Document) error {
	for _, doc := range docs {
		if _, err := fmt.Fprintf(w, "--- %s ---\n%s\n", doc.Path, doc.Content); err != nil {
			return fmt.Errorf("printing %s: %w", doc.Path, err)
		}
	}
	return nil
}

// atomicWriteToFile writes data to path using temp file + rename pattern.
// Ensures no partial writes occur on crash.
func atomicWriteToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
