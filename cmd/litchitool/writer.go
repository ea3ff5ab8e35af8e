package main

import (
	"os"

	"github.com/VolaTeQ/litchitool/internal/history"
)

// newHistoryWriter sets up history writers based on flags and env vars.
// GreptimeDB is used when GREPTIMEDB_ENDPOINT is set. It returns the writer
// and a cleanup function to close any resources.
func newHistoryWriter(file string, print bool) (history.Writer, func(), error) {
	cleanup := func() {}
	var writers []history.Writer

	if endpoint := os.Getenv("GREPTIMEDB_ENDPOINT"); endpoint != "" {
		gw, err := history.NewGreptimeDBWriter(endpoint, os.Getenv("GREPTIMEDB_DATABASE"), os.Getenv("GREPTIMEDB_TABLE"))
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, gw)
	}
	if print {
		writers = append(writers, history.NewJSONWriter(os.Stderr))
	}
	if file != "" {
		fw, err := history.NewFileWriter(file)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, fw)
		cleanup = func() { fw.Close() }
	}

	switch len(writers) {
	case 0:
		return history.Discard{}, cleanup, nil
	case 1:
		return writers[0], cleanup, nil
	}
	return history.NewMultiWriter(writers...), cleanup, nil
}
