package sink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonMunkholm/movieimport/internal/core"
)

func newTestServer(t *testing.T) (*httptest.Server, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	srv := httptest.NewServer(NewServer(store, nil).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestCreateMovie(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid movie",
			body:       `{"title":"Cars","year":2006,"length":117,"popularity":73,"awards":"No","image":"cars.jpg"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "nulls for absent values",
			body:       `{"title":"Up","year":2009,"length":null,"subject":null,"awards":"Yes","image":null}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed json",
			body:       `{"title":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"title":"Cars","year":2006,"awards":"No","rating":5}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "blank title",
			body:       `{"title":"  ","year":2006,"awards":"No"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "awards not normalized",
			body:       `{"title":"Cars","year":2006,"awards":"yes"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "popularity out of range",
			body:       `{"title":"Cars","year":2006,"awards":"No","popularity":101}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "year before cinema",
			body:       `{"title":"Cars","year":1700,"awards":"No"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, store := newTestServer(t)

			resp := post(t, srv.URL+"/movies", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			if tt.wantStatus != http.StatusCreated {
				var errResp ErrorResponse
				if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
					t.Fatalf("decode error body: %v", err)
				}
				if errResp.Error == "" || errResp.RequestID == "" {
					t.Errorf("error response = %+v", errResp)
				}
				if store.Len() != 0 {
					t.Errorf("store has %d movies, want 0", store.Len())
				}
				return
			}

			var created CreateResponse
			if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if created.ID == "" {
				t.Error("empty ID")
			}
			if _, err := store.Get(context.Background(), created.ID); err != nil {
				t.Errorf("stored movie: %v", err)
			}
		})
	}
}

func TestListAndGetMovies(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/movies")
	if err != nil {
		t.Fatal(err)
	}
	var empty []Movie
	if err := json.NewDecoder(resp.Body).Decode(&empty); err != nil {
		t.Fatalf("decode empty list: %v", err)
	}
	resp.Body.Close()
	if empty == nil || len(empty) != 0 {
		t.Errorf("empty list = %v, want []", empty)
	}

	var created CreateResponse
	resp = post(t, srv.URL+"/movies", `{"title":"Brave","year":2012,"director":"Mark Andrews","awards":"Yes"}`)
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}

	resp, err = http.Get(srv.URL + "/movies/" + created.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var m Movie
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatal(err)
	}
	if m.ID != created.ID || m.Title != "Brave" || m.Director == nil || *m.Director != "Mark Andrews" {
		t.Errorf("movie = %+v", m)
	}

	resp2, err := http.Get(srv.URL + "/movies/does-not-exist")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", resp2.StatusCode)
	}
}

func TestCreateMovie_BodyTooLarge(t *testing.T) {
	srv, store := newTestServer(t)

	big := `{"title":"` + strings.Repeat("x", MaxBodySize) + `","year":2006,"awards":"No"}`
	resp := post(t, srv.URL+"/movies", big)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if store.Len() != 0 {
		t.Errorf("store has %d movies, want 0", store.Len())
	}
}

func TestImportIntoSink(t *testing.T) {
	srv, store := newTestServer(t)

	input := "title;year;length;popularity;awards;image\n" +
		"Cars;2006;117;73;no;cars.jpg\n" +
		";2007;90;10;no;\n" +
		"Up;not-a-number;96;150;YES;up.gif\n"

	src, err := core.NewCSVSource(strings.NewReader(input), int64(len(input)), ';')
	if err != nil {
		t.Fatal(err)
	}

	summary, err := core.Run(context.Background(), src, core.NewSubmitter(srv.Client(), srv.URL+"/movies"), core.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Read != 3 || summary.Imported != 2 || summary.Rejected != 1 || summary.Failed != 0 {
		t.Errorf("summary = %+v", summary)
	}

	movies, _ := store.List(context.Background())
	byTitle := map[string]Movie{}
	for _, m := range movies {
		byTitle[m.Title] = m
	}

	up, ok := byTitle["Up"]
	if !ok {
		t.Fatalf("Up not stored; got %v", movies)
	}
	if up.Year != core.MinYear || up.Popularity != nil || up.Image != nil || up.Awards != core.AwardsYes {
		t.Errorf("Up = %+v", up.CleanRecord)
	}
	if cars := byTitle["Cars"]; cars.Length == nil || *cars.Length != 117 {
		t.Errorf("Cars = %+v", cars.CleanRecord)
	}
}

func TestImportIntoSink_StrictAbortsOnRejection(t *testing.T) {
	srv, _ := newTestServer(t)

	// The sink rejects a whitespace title the importer lets through
	input := "title;year;awards\n   ;2006;no\n"
	src, err := core.NewCSVSource(strings.NewReader(input), 0, ';')
	if err != nil {
		t.Fatal(err)
	}

	_, err = core.Run(context.Background(), src, core.NewSubmitter(srv.Client(), srv.URL+"/movies"), core.Options{StopOnError: true})
	if err == nil {
		t.Fatal("expected the run to abort")
	}
	if code := core.MapError(err).Code; code != "SUB001" {
		t.Errorf("code = %s, want SUB001", code)
	}
}

func TestMovieRoutesRequireAPIKey(t *testing.T) {
	srv := httptest.NewServer(NewServer(NewMemoryStore(), []string{"k1"}).Handler())
	defer srv.Close()

	resp := post(t, srv.URL+"/movies", `{"title":"Cars","year":2006,"awards":"No"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("without key: status = %d, want 401", resp.StatusCode)
	}

	// Health stays open
	health, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", health.StatusCode)
	}

	sub := core.NewSubmitter(srv.Client(), srv.URL+"/movies").WithAPIKey("k1")
	rec := &core.CleanRecord{Title: "Cars", Year: 2006, Awards: core.AwardsNo}
	if err := sub.Submit(context.Background(), rec); err != nil {
		t.Errorf("with key: %v", err)
	}
}
