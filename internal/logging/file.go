package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
)

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

// FileWriter appends to a log file and, once it grows past its limit, keeps
// only the most recent tail.
type FileWriter struct {
	file    *os.File
	maxSize int64
	keep    int64
	mu      sync.Mutex
}

// OpenFile opens path for appending, creating parent directories.
func OpenFile(path string) (*FileWriter, error) {
	return openFile(path, maxLogSizeBytes, keepLogSizeBytes)
}

func openFile(path string, maxSize, keep int64) (*FileWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	w := &FileWriter{file: file, maxSize: maxSize, keep: keep}
	if err := w.truncateIfNeeded(); err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

func (w *FileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	if err := w.truncateIfNeeded(); err != nil {
		return n, err
	}
	return n, nil
}

// Close closes the underlying file.
func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func (w *FileWriter) truncateIfNeeded() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= w.maxSize {
		return nil
	}

	buf := make([]byte, w.keep)
	n, err := w.file.ReadAt(buf, size-w.keep)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	// O_APPEND writes land at the new end regardless of the offset.
	_, err = w.file.Write(buf)
	return err
}
