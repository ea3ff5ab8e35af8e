package history

import "context"

// Writer persists history entries.
type Writer interface {
	Write(ctx context.Context, e Entry) error
}

// MultiWriter fans entries out to several writers. The first error wins
// but every writer is still called.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a MultiWriter, skipping nil writers.
func NewMultiWriter(ws ...Writer) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range ws {
		if w != nil {
			mw.writers = append(mw.writers, w)
		}
	}
	return mw
}

// Write sends e to all writers.
func (mw *MultiWriter) Write(ctx context.Context, e Entry) error {
	var first error
	for _, w := range mw.writers {
		if err := w.Write(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// WriteBatch sends entries to all writers, using WriteBatch where a
// writer supports it.
func (mw *MultiWriter) WriteBatch(ctx context.Context, entries []Entry) error {
	var first error
	for _, w := range mw.writers {
		if err := writeBatch(ctx, w, entries); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func writeBatch(ctx context.Context, w Writer, entries []Entry) error {
	if bw, ok := w.(BatchWriter); ok {
		return bw.WriteBatch(ctx, entries)
	}
	for _, e := range entries {
		if err := w.Write(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of wrapped writers.
func (mw *MultiWriter) Len() int { return len(mw.writers) }

// Discard drops every entry.
type Discard struct{}

func (Discard) Write(context.Context, Entry) error { return nil }
