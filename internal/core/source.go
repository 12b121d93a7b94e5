package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultDelimiter is the field delimiter of the movie export files.
const DefaultDelimiter = ';'

// ErrEmptyFile is returned when the input has no header row.
var ErrEmptyFile = errors.New("empty file: no header row")

// RecordSource yields raw records in file order. Next returns io.EOF after
// the last record.
type RecordSource interface {
	Next() (RawRecord, error)
}

// CSVSource reads raw records from delimited text whose first row holds the
// field names.
type CSVSource struct {
	reader  *csv.Reader
	counter *CountingReader
	header  []string
	closer  io.Closer
}

// OpenCSV opens a delimited file for reading. The caller must Close it.
func OpenCSV(path string, delimiter rune) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	src, err := NewCSVSource(f, size, delimiter)
	if err != nil {
		f.Close()
		return nil, err
	}
	src.closer = f
	return src, nil
}

// NewCSVSource reads the header row from r and returns a source for the
// remaining rows. size is the total input size for progress, 0 if unknown.
func NewCSVSource(r io.Reader, size int64, delimiter rune) (*CSVSource, error) {
	in, counter := wrapInput(r, size)

	reader := csv.NewReader(in)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1 // Short and long rows are handled per record
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cleaned := make([]string, len(header))
	for i, h := range header {
		cleaned[i] = CleanHeader(h)
	}

	return &CSVSource{
		reader:  reader,
		counter: counter,
		header:  cleaned,
	}, nil
}

// Header returns the cleaned field names.
func (s *CSVSource) Header() []string {
	return s.header
}

// Next returns the next record. Blank lines are skipped by the CSV reader;
// a row of empty cells is still a record. Cells beyond the header are
// ignored; header fields beyond the row's cells are absent.
func (s *CSVSource) Next() (RawRecord, error) {
	row, err := s.reader.Read()
	if err != nil {
		return RawRecord{}, err
	}

	line, _ := s.reader.FieldPos(0)
	values := make(map[string]string, len(s.header))
	for i, name := range s.header {
		if i >= len(row) {
			break
		}
		if name == "" {
			continue
		}
		// First occurrence wins for duplicated header names
		if _, dup := values[name]; !dup {
			values[name] = row[i]
		}
	}
	return RawRecord{Line: line, Values: values}, nil
}

// Progress returns the percentage of input bytes consumed so far.
func (s *CSVSource) Progress() int {
	return s.counter.Progress()
}

// Close closes the underlying file, if the source owns one.
func (s *CSVSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// CleanHeader normalizes a header cell for matching: trimmed, lowercased,
// surrounding quotes removed.
func CleanHeader(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.ToLower(strings.TrimSpace(s))
}
