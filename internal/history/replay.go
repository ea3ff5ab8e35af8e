package history

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
)

// ReplayBatchSize bounds the entries sent per WriteBatch call.
const ReplayBatchSize = 100

// BatchWriter is implemented by writers that can insert several entries
// in one request.
type BatchWriter interface {
	WriteBatch(ctx context.Context, entries []Entry) error
}

// Replay feeds JSONL entries from r into w, batching when w supports it.
// It returns the number of entries written.
func Replay(ctx context.Context, r io.Reader, w Writer) (int, error) {
	dec := json.NewDecoder(r)
	bw, batching := w.(BatchWriter)
	batch := make([]Entry, 0, ReplayBatchSize)
	n := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := bw.WriteBatch(ctx, batch); err != nil {
			return err
		}
		n += len(batch)
		batch = batch[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		var e Entry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return n, err
		}
		if !batching {
			if err := w.Write(ctx, e); err != nil {
				return n, err
			}
			n++
			continue
		}
		batch = append(batch, e)
		if len(batch) == ReplayBatchSize {
			if err := flush(); err != nil {
				return n, err
			}
		}
	}
	if batching {
		if err := flush(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// ReplayFile opens path and replays its entries.
func ReplayFile(ctx context.Context, path string, w Writer) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return Replay(ctx, f, w)
}
