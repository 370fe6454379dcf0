package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/LLM4Rocq/LLM4Docq/internal/rocq"
)

// ResultFile is the name of the dataset written by extraction stages.
const ResultFile = "result.json"

// AtomicWriter handles atomic file writing using temp → rename pattern.
// It is safe for concurrent use.
type AtomicWriter struct {
	outputDir string
	tempDir   string
}

// NewAtomicWriter creates a new atomic writer.
func NewAtomicWriter(outputDir string) (*AtomicWriter, error) {
	tempDir := filepath.Join(outputDir, ".tmp")

	// Clean up stale temp files
	if err := os.RemoveAll(tempDir); err != nil {
		return nil, fmt.Errorf("failed to clean temp directory: %w", err)
	}
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &AtomicWriter{
		outputDir: outputDir,
		tempDir:   tempDir,
	}, nil
}

// Dir returns the output directory.
func (w *AtomicWriter) Dir() string {
	return w.outputDir
}

// WriteJSON writes v as indented JSON to relPath.
func (w *AtomicWriter) WriteJSON(relPath string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", relPath, err)
	}
	return w.WriteFile(relPath, data)
}

// WriteText writes text to relPath.
func (w *AtomicWriter) WriteText(relPath, text string) error {
	return w.WriteFile(relPath, []byte(text))
}

// WriteFile writes data to relPath under the output directory, creating
// parent directories as needed. Readers never observe a partial file.
func (w *AtomicWriter) WriteFile(relPath string, data []byte) error {
	finalPath := filepath.Join(w.outputDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", relPath, err)
	}

	tmp, err := os.CreateTemp(w.tempDir, "write-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Exists reports whether relPath is already present in the output directory.
func (w *AtomicWriter) Exists(relPath string) bool {
	_, err := os.Stat(filepath.Join(w.outputDir, filepath.FromSlash(relPath)))
	return err == nil
}

// Close removes the temp directory.
func (w *AtomicWriter) Close() error {
	return os.RemoveAll(w.tempDir)
}

// WriteResult writes every rewritten unit at its relative path and, for
// extraction stages, the dataset as result.json.
func WriteResult(w *AtomicWriter, res *Result) error {
	for _, u := range res.Units {
		if err := w.WriteText(u.RelPath, res.Rewritten[u.ID]); err != nil {
			return fmt.Errorf("write unit %s: %w", u.ID, err)
		}
	}
	if res.Dataset == nil {
		return nil
	}
	return w.WriteJSON(ResultFile, res.Dataset)
}

// LoadDataset reads a result.json file. A directory path is resolved to the
// result.json inside it.
func LoadDataset(path string) (rocq.Dataset, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, ResultFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("dataset %s not found: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var ds rocq.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}
	ds.Normalize()
	return ds, nil
}
