package sink

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/movieimport/internal/core"
)

// newTestPostgresStore connects to TEST_DATABASE_URL, skipping the test if unset.
func newTestPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	store, err := NewPostgresStore(ctx, pool)
	if err != nil {
		t.Fatalf("NewPostgresStore: %v", err)
	}
	if _, err := pool.Exec(ctx, "TRUNCATE movies"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return store
}

func TestPostgresStore(t *testing.T) {
	store := newTestPostgresStore(t)
	ctx := context.Background()

	length := 117.0
	image := "cars.jpg"
	m, err := store.Create(ctx, core.CleanRecord{Title: "Cars", Year: 2006, Length: &length, Awards: core.AwardsNo, Image: &image})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(ctx, m.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Cars" || got.Year != 2006 || got.Length == nil || *got.Length != 117 || got.Subject != nil {
		t.Errorf("Get = %+v", got)
	}

	movies, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(movies) != 1 || movies[0].ID != m.ID {
		t.Errorf("List = %+v", movies)
	}

	if _, err := store.Get(ctx, "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(invalid) error = %v, want ErrNotFound", err)
	}
	if _, err := store.Get(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestPgUUIDRoundTrip(t *testing.T) {
	id := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	if got := pgUUIDToString(toPgUUID(id)); got != id {
		t.Errorf("round trip = %q, want %q", got, id)
	}
	if toPgUUID("").Valid || toPgUUID("nope").Valid {
		t.Error("invalid input should give an invalid UUID")
	}
	if got := pgUUIDToString(toPgUUID("nope")); got != "" {
		t.Errorf("invalid UUID string = %q, want empty", got)
	}
}
