package core

import (
	"errors"
	"fmt"
)

// ErrMissingRequiredField is returned when a record lacks its title.
// The record is rejected as a whole and never submitted.
var ErrMissingRequiredField = errors.New("missing required field")

// ErrEncoding is returned when a text field cannot be decoded to UTF-8.
var ErrEncoding = errors.New("encoding error")

// SubmissionError represents a record the endpoint did not accept.
// StatusCode is zero when the request never got a response.
type SubmissionError struct {
	Title      string
	StatusCode int
	Reason     string // HTTP reason phrase
	Body       string // Raw response body, verbatim
	Err        error  // Transport error, if any
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("submission failed: title=%q: %v", e.Title, e.Err)
	}
	return fmt.Sprintf("submission failed: http_status=%d http_reason=%s http_resp=%q title=%q",
		e.StatusCode, e.Reason, e.Body, e.Title)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
