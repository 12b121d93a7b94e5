package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
)

// RejectsWriter collects rows that were rejected or failed to submit, with a
// leading status and reason, so the data loss of a run can be reviewed and the
// rows fixed and re-imported. Safe for concurrent use. A nil *RejectsWriter
// discards everything.
type RejectsWriter struct {
	mu     sync.Mutex
	w      *csv.Writer
	closer io.Closer
}

// CreateRejects creates (or truncates) the rejects file at path.
func CreateRejects(path string, delimiter rune) (*RejectsWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create rejects file: %w", err)
	}
	rw, err := NewRejectsWriter(f, delimiter)
	if err != nil {
		f.Close()
		return nil, err
	}
	rw.closer = f
	return rw, nil
}

// NewRejectsWriter writes the header row to w and returns the writer.
func NewRejectsWriter(w io.Writer, delimiter rune) (*RejectsWriter, error) {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	header := append([]string{"status", "reason", "line"}, Fields...)
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("write rejects header: %w", err)
	}
	return &RejectsWriter{w: cw}, nil
}

// Write appends one row with its terminal state and the error that caused it.
func (r *RejectsWriter) Write(raw RawRecord, state RecordState, reason error) error {
	if r == nil {
		return nil
	}

	row := make([]string, 0, len(Fields)+3)
	row = append(row, string(state), reason.Error(), strconv.Itoa(raw.Line))
	for _, f := range Fields {
		v, _ := raw.Get(f)
		row = append(row, v)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.w.Write(row); err != nil {
		return fmt.Errorf("write rejects row: %w", err)
	}
	return nil
}

// Close flushes buffered rows and closes the file, if owned.
func (r *RejectsWriter) Close() error {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	r.w.Flush()
	err := r.w.Error()
	r.mu.Unlock()

	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
