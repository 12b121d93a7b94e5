package sink

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/movieimport/internal/core"
)

// ErrNotFound is returned when a movie ID is unknown.
var ErrNotFound = errors.New("movie not found")

// Movie is a stored movie record.
type Movie struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	core.CleanRecord
}

// Store persists movies received by the sink.
type Store interface {
	Create(ctx context.Context, rec core.CleanRecord) (Movie, error)
	List(ctx context.Context) ([]Movie, error)
	Get(ctx context.Context, id string) (Movie, error)
}

// MemoryStore keeps movies in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	movies []Movie
	byID   map[string]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]int)}
}

// Create stores rec under a new ID.
func (s *MemoryStore) Create(_ context.Context, rec core.CleanRecord) (Movie, error) {
	m := Movie{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		CleanRecord: rec,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[m.ID] = len(s.movies)
	s.movies = append(s.movies, m)
	return m, nil
}

// List returns all movies in insertion order.
func (s *MemoryStore) List(_ context.Context) ([]Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Movie, len(s.movies))
	copy(out, s.movies)
	return out, nil
}

// Get returns one movie by ID.
func (s *MemoryStore) Get(_ context.Context, id string) (Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return Movie{}, ErrNotFound
	}
	return s.movies[i], nil
}

// Len returns the number of stored movies.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movies)
}
