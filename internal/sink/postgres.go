package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/movieimport/internal/core"
)

const createMoviesTable = `
CREATE TABLE IF NOT EXISTS movies (
	id          UUID PRIMARY KEY,
	title       TEXT NOT NULL,
	year        INTEGER NOT NULL,
	length      DOUBLE PRECISION,
	subject     TEXT,
	actor       TEXT,
	actress     TEXT,
	director    TEXT,
	popularity  DOUBLE PRECISION,
	awards      TEXT NOT NULL,
	image       TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertMovie = `
INSERT INTO movies (id, title, year, length, subject, actor, actress, director, popularity, awards, image, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const selectMovies = `
SELECT id, title, year, length, subject, actor, actress, director, popularity, awards, image, created_at
FROM movies`

// PostgresStore persists movies in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates the movies table if missing and returns the store.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, createMoviesTable); err != nil {
		return nil, fmt.Errorf("create movies table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Create inserts rec under a new ID.
func (s *PostgresStore) Create(ctx context.Context, rec core.CleanRecord) (Movie, error) {
	m := Movie{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		CleanRecord: rec,
	}

	_, err := s.pool.Exec(ctx, insertMovie,
		toPgUUID(m.ID),
		rec.Title,
		rec.Year,
		rec.Length,
		rec.Subject,
		rec.Actor,
		rec.Actress,
		rec.Director,
		rec.Popularity,
		rec.Awards,
		rec.Image,
		m.CreatedAt,
	)
	if err != nil {
		return Movie{}, fmt.Errorf("insert movie %q: %w", rec.Title, err)
	}
	return m, nil
}

// List returns all movies ordered by creation time.
func (s *PostgresStore) List(ctx context.Context) ([]Movie, error) {
	rows, err := s.pool.Query(ctx, selectMovies+" ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}

	movies, err := pgx.CollectRows(rows, scanMovie)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// Get returns one movie by ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (Movie, error) {
	pgID := toPgUUID(id)
	if !pgID.Valid {
		return Movie{}, ErrNotFound
	}

	rows, err := s.pool.Query(ctx, selectMovies+" WHERE id = $1", pgID)
	if err != nil {
		return Movie{}, fmt.Errorf("get movie: %w", err)
	}

	m, err := pgx.CollectExactlyOneRow(rows, scanMovie)
	if errors.Is(err, pgx.ErrNoRows) {
		return Movie{}, ErrNotFound
	}
	if err != nil {
		return Movie{}, fmt.Errorf("get movie: %w", err)
	}
	return m, nil
}

func scanMovie(row pgx.CollectableRow) (Movie, error) {
	var (
		m  Movie
		id pgtype.UUID
	)
	err := row.Scan(
		&id,
		&m.Title,
		&m.Year,
		&m.Length,
		&m.Subject,
		&m.Actor,
		&m.Actress,
		&m.Director,
		&m.Popularity,
		&m.Awards,
		&m.Image,
		&m.CreatedAt,
	)
	if err != nil {
		return Movie{}, err
	}
	m.ID = pgUUIDToString(id)
	return m, nil
}

// toPgUUID converts a string to pgtype.UUID.
// Returns invalid if the string is empty or not a valid UUID.
func toPgUUID(s string) pgtype.UUID {
	if s == "" {
		return pgtype.UUID{Valid: false}
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

// pgUUIDToString converts a pgtype.UUID to its string representation.
// Returns empty string if the UUID is invalid.
func pgUUIDToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
