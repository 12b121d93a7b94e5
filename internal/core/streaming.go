package core

// streaming.go provides the reader wrappers applied to the input file:
//
//   - BOMSkippingReader: Removes the UTF-8 BOM (0xEF 0xBB 0xBF) written by Windows tools
//   - CountingReader: Tracks bytes read for progress reporting
//
// Invalid UTF-8 is deliberately left alone here: text fields are re-encoded one by
// one during normalization, which needs the raw bytes to guess the charset.

import (
	"bytes"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader wraps an io.Reader and skips a leading UTF-8 BOM if present.
type BOMSkippingReader struct {
	reader  io.Reader
	checked bool
	pending []byte // Bytes read during the BOM check that are not a BOM
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader. On the first read, it checks for and skips the BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if !r.checked {
		r.checked = true

		buf := make([]byte, len(utf8BOM))
		n, err := io.ReadFull(r.reader, buf)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return 0, err
		}
		if n == len(utf8BOM) && bytes.Equal(buf, utf8BOM) {
			n = 0
		}
		r.pending = buf[:n]

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			// Source shorter than a BOM: nothing more to read behind the pending bytes
			r.reader = eofReader{}
		}
	}

	if len(r.pending) > 0 {
		n := copy(p, r.pending)
		r.pending = r.pending[n:]
		return n, nil
	}

	return r.reader.Read(p)
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

// CountingReader wraps an io.Reader to track bytes read.
// It is not safe for concurrent use; the record source reads from one goroutine.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Total     int64 // If known (0 if unknown)
}

// NewCountingReader creates a counting reader with optional total size.
func NewCountingReader(r io.Reader, total int64) *CountingReader {
	return &CountingReader{
		reader: r,
		Total:  total,
	}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// Progress returns the read progress as a percentage (0-100).
// Returns 0 if total is unknown.
func (r *CountingReader) Progress() int {
	if r.Total <= 0 {
		return 0
	}
	pct := int(r.BytesRead * 100 / r.Total)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// wrapInput applies BOM skipping and byte counting. Counting wraps the raw
// reader so progress is measured against the file size on disk.
func wrapInput(r io.Reader, totalSize int64) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r, totalSize)
	return NewBOMSkippingReader(counter), counter
}
