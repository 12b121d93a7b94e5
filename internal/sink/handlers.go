package sink

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/movieimport/internal/core"
	"github.com/JonMunkholm/movieimport/internal/logging"
)

// ErrorResponse represents the JSON structure for error responses.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// CreateResponse is returned with 201 Created.
type CreateResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var rec core.CleanRecord

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		respondError(w, r, fmt.Errorf("invalid movie document: %w", err), http.StatusBadRequest)
		return
	}

	if err := validateMovie(rec); err != nil {
		respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	m, err := s.store.Create(r.Context(), rec)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	logging.FromContext(r.Context()).Info("movie stored", "id", m.ID, "title", m.Title)
	respondJSON(w, http.StatusCreated, CreateResponse{ID: m.ID, Title: m.Title})
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.store.List(r.Context())
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if movies == nil {
		movies = []Movie{}
	}
	respondJSON(w, http.StatusOK, movies)
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		respondError(w, r, err, http.StatusNotFound)
		return
	}
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// validateMovie checks the invariants the importer guarantees for a clean record.
func validateMovie(rec core.CleanRecord) error {
	var errs []string
	if strings.TrimSpace(rec.Title) == "" {
		errs = append(errs, "title is required")
	}
	if rec.Year < core.MinYear {
		errs = append(errs, fmt.Sprintf("year must be >= %d", core.MinYear))
	}
	if rec.Awards != core.AwardsYes && rec.Awards != core.AwardsNo {
		errs = append(errs, fmt.Sprintf("awards must be %q or %q", core.AwardsYes, core.AwardsNo))
	}
	if rec.Popularity != nil && (*rec.Popularity < core.MinPopularity || *rec.Popularity > core.MaxPopularity) {
		errs = append(errs, "popularity must be within [0, 100]")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// respondError logs the error server-side and writes a JSON error body.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	logger := logging.WithFields(r.Context(), "path", r.URL.Path, "status", statusCode)
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", "error", err)
	} else {
		logger.Warn("request rejected", "error", err)
	}

	respondJSON(w, statusCode, ErrorResponse{
		Error:     err.Error(),
		RequestID: chimw.GetReqID(r.Context()),
	})
}

func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
