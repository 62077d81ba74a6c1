package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Manager writes downloaded files into one output directory
type Manager struct {
	outputDir string
	saved     map[string]bool
	mu        sync.RWMutex
}

// NewManager creates a new storage manager, creating the directory if needed
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{
		outputDir: outputDir,
		saved:     make(map[string]bool),
	}, nil
}

// Path returns where a file with the given name is stored
func (m *Manager) Path(filename string) string {
	return filepath.Join(m.outputDir, filename)
}

// Exists checks whether a file with the given name is already on disk
func (m *Manager) Exists(filename string) bool {
	_, err := os.Stat(m.Path(filename))
	return err == nil
}

// Save writes the reader's content under filename. An existing file with
// the same name is replaced.
func (m *Manager) Save(r io.Reader, filename string) (string, error) {
	path := m.Path(filename)
	if err := writeAtomic(path, r); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.saved[filename] = true
	m.mu.Unlock()

	return path, nil
}

// OutputDir returns the output directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// SavedCount returns the number of distinct files written by this manager
func (m *Manager) SavedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.saved)
}

// WriteFileAtomic writes data to path through a temporary file and a rename,
// creating the parent directory if needed
func WriteFileAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return writeAtomic(path, bytes.NewReader(data))
}

func writeAtomic(path string, r io.Reader) error {
	tempFile := path + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write file data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
