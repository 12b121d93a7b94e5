package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/movieimport/internal/logging"
)

// MaxResponseBody bounds how much of a failed response body is kept for diagnostics.
const MaxResponseBody = 1 << 20

// RecordSubmitter persists one clean record.
type RecordSubmitter interface {
	Submit(ctx context.Context, rec *CleanRecord) error
}

// Submitter posts clean records, one per request, to an HTTP endpoint.
// It is safe for concurrent use when the underlying client is.
type Submitter struct {
	client *http.Client
	url    string
	apiKey string
}

// NewSubmitter creates a submitter for the given endpoint URL.
// A nil client falls back to http.DefaultClient.
func NewSubmitter(client *http.Client, url string) *Submitter {
	if client == nil {
		client = http.DefaultClient
	}
	return &Submitter{client: client, url: url}
}

// WithAPIKey sets a key sent as X-API-Key with every request.
func (s *Submitter) WithAPIKey(key string) *Submitter {
	s.apiKey = key
	return s
}

// Submit sends rec as a JSON document. Only 201 Created counts as success;
// any other outcome returns a *SubmissionError. A nil record is a no-op.
func (s *Submitter) Submit(ctx context.Context, rec *CleanRecord) error {
	if rec == nil {
		return nil
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %q: %w", rec.Title, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return &SubmissionError{Title: rec.Title, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &SubmissionError{Title: rec.Title, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseBody))
		logging.FromContext(ctx).Info("record created", "title", rec.Title)
		return nil
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBody))
	if err != nil {
		return &SubmissionError{Title: rec.Title, StatusCode: resp.StatusCode, Reason: reasonPhrase(resp), Err: err}
	}

	return &SubmissionError{
		Title:      rec.Title,
		StatusCode: resp.StatusCode,
		Reason:     reasonPhrase(resp),
		Body:       string(respBody),
	}
}

// reasonPhrase extracts the reason phrase from a status line like "500 Internal Server Error".
func reasonPhrase(resp *http.Response) string {
	prefix := strconv.Itoa(resp.StatusCode) + " "
	if reason := strings.TrimPrefix(resp.Status, prefix); reason != resp.Status && reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}
