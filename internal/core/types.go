package core

import (
	"strconv"
	"time"
)

// Field names of a movie record, as they appear in the input header.
const (
	FieldTitle      = "title"
	FieldYear       = "year"
	FieldLength     = "length"
	FieldSubject    = "subject"
	FieldActor      = "actor"
	FieldActress    = "actress"
	FieldDirector   = "director"
	FieldPopularity = "popularity"
	FieldAwards     = "awards"
	FieldImage      = "image"
)

// Fields lists every movie field in canonical column order.
var Fields = []string{
	FieldTitle,
	FieldYear,
	FieldLength,
	FieldSubject,
	FieldActor,
	FieldActress,
	FieldDirector,
	FieldPopularity,
	FieldAwards,
	FieldImage,
}

// RawRecord is one source row as read: field name to string value.
// A field missing from the map is absent (column not in the header or row too short).
type RawRecord struct {
	Line   int               // Line number in the source file (1-indexed)
	Values map[string]string // Cell values keyed by lowercased header name
}

// Get returns the raw value of a field and whether it was present.
func (r RawRecord) Get(field string) (string, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// CleanRecord is a normalized movie, ready for submission.
// Nil pointers are absent values and serialize as JSON null.
type CleanRecord struct {
	Title      string   `json:"title"`
	Year       int      `json:"year"`
	Length     *float64 `json:"length"`
	Subject    *string  `json:"subject"`
	Actor      *string  `json:"actor"`
	Actress    *string  `json:"actress"`
	Director   *string  `json:"director"`
	Popularity *float64 `json:"popularity"`
	Awards     string   `json:"awards"`
	Image      *string  `json:"image"`
}

// Raw converts the record back to its string form. Absent values are left
// out of the map, so normalizing the result yields the same record.
func (c CleanRecord) Raw(line int) RawRecord {
	values := map[string]string{
		FieldTitle:  c.Title,
		FieldYear:   strconv.Itoa(c.Year),
		FieldAwards: c.Awards,
	}
	putFloat := func(field string, f *float64) {
		if f != nil {
			values[field] = strconv.FormatFloat(*f, 'f', -1, 64)
		}
	}
	putString := func(field string, s *string) {
		if s != nil {
			values[field] = *s
		}
	}
	putFloat(FieldLength, c.Length)
	putFloat(FieldPopularity, c.Popularity)
	putString(FieldSubject, c.Subject)
	putString(FieldActor, c.Actor)
	putString(FieldActress, c.Actress)
	putString(FieldDirector, c.Director)
	putString(FieldImage, c.Image)
	return RawRecord{Line: line, Values: values}
}

// Substitution records a field value that failed to parse or validate and the
// default that replaced it. A nil Substituted means the field became absent.
type Substitution struct {
	Field       string
	Value       string // Rejected raw value
	Present     bool   // False if the field was missing from the row
	Substituted any
	Reason      string
}

// RecordState is the terminal state of one record in a run.
type RecordState string

const (
	StateImported     RecordState = "imported"
	StateRejected     RecordState = "rejected"
	StateSubmitFailed RecordState = "submit_failed"
)

// RunSummary contains the final counts of an import run.
type RunSummary struct {
	RunID    string
	Read     int64 // Rows read from the source
	Imported int64 // Rows the endpoint answered 201 for
	Rejected int64 // Rows rejected by normalization
	Failed   int64 // Rows whose submission failed
	Duration time.Duration
}
