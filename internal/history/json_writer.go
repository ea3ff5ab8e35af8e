package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// JSONWriter prints entries as JSON lines.
type JSONWriter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewJSONWriter creates a JSONWriter writing to out, or os.Stdout if nil.
func NewJSONWriter(out io.Writer) *JSONWriter {
	if out == nil {
		out = os.Stdout
	}
	return &JSONWriter{out: out}
}

// Write outputs an entry in JSON format.
func (w *JSONWriter) Write(_ context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}
