package history

import (
	"context"
	"encoding/json"
	"os"
	"sync"
)

// FileWriter appends entries to a JSONL file.
type FileWriter struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewFileWriter opens path for appending, creating it if needed.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileWriter{file: f, enc: json.NewEncoder(f)}, nil
}

// Write logs a single entry.
func (f *FileWriter) Write(_ context.Context, e Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enc.Encode(e)
}

// Close closes the underlying file.
func (f *FileWriter) Close() error {
	if f.file == nil {
		return nil
	}
	return f.file.Close()
}
