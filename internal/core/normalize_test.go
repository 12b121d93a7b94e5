package core

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

func rawRecord(line int, kv ...string) RawRecord {
	values := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		values[kv[i]] = kv[i+1]
	}
	return RawRecord{Line: line, Values: values}
}

func TestNormalize_Cars(t *testing.T) {
	rec, subs, err := Normalize(rawRecord(2,
		FieldTitle, "Cars",
		FieldYear, "2006",
		FieldLength, "117",
		FieldPopularity, "73",
		FieldAwards, "no",
		FieldImage, "cars.jpg",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := CleanRecord{
		Title:      "Cars",
		Year:       2006,
		Length:     ptr(117.0),
		Popularity: ptr(73.0),
		Awards:     AwardsNo,
		Image:      ptr("cars.jpg"),
	}
	if !reflect.DeepEqual(rec, want) {
		t.Errorf("got %+v, want %+v", rec, want)
	}

	// Text columns are not in the row: absent without warning
	if len(subs) != 0 {
		t.Errorf("unexpected substitutions: %+v", subs)
	}
}

func TestNormalize_MissingTitle(t *testing.T) {
	tests := []struct {
		name string
		rec  RawRecord
	}{
		{name: "empty title", rec: rawRecord(3, FieldTitle, "", FieldYear, "2006")},
		{name: "no title column", rec: rawRecord(4, FieldYear, "2006")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Normalize(tt.rec)
			if !errors.Is(err, ErrMissingRequiredField) {
				t.Fatalf("error = %v, want ErrMissingRequiredField", err)
			}
			if !strings.Contains(err.Error(), "field=title") {
				t.Errorf("error %q does not name the field", err)
			}
		})
	}
}

func TestNormalize_UndecodableTitle(t *testing.T) {
	withDetector(t, func([]byte) (string, error) { return "IBM420_ltr", nil })

	_, _, err := Normalize(rawRecord(5, FieldTitle, "\xff\xfe"))
	if !errors.Is(err, ErrMissingRequiredField) {
		t.Fatalf("error = %v, want ErrMissingRequiredField", err)
	}
}

func TestNormalize_Substitutions(t *testing.T) {
	rec, subs, err := Normalize(rawRecord(7,
		FieldTitle, "Up",
		FieldYear, "abc",
		FieldLength, "96",
		FieldPopularity, "150",
		FieldAwards, "Yes",
		FieldImage, "up.gif",
		FieldDirector, "Pete Docter",
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Year != MinYear {
		t.Errorf("Year = %d, want %d", rec.Year, MinYear)
	}
	if rec.Popularity != nil {
		t.Errorf("Popularity = %v, want absent", *rec.Popularity)
	}
	if rec.Image != nil {
		t.Errorf("Image = %q, want absent", *rec.Image)
	}
	if rec.Awards != AwardsYes {
		t.Errorf("Awards = %q, want Yes", rec.Awards)
	}
	if rec.Director == nil || *rec.Director != "Pete Docter" {
		t.Errorf("Director = %v, want Pete Docter", rec.Director)
	}

	got := make(map[string]bool)
	for _, s := range subs {
		got[s.Field] = true
	}
	for _, f := range []string{FieldYear, FieldPopularity, FieldImage} {
		if !got[f] {
			t.Errorf("no substitution for %s in %+v", f, subs)
		}
	}
	if len(subs) != 3 {
		t.Errorf("got %d substitutions, want 3: %+v", len(subs), subs)
	}
}

func TestNormalize_MissingFieldsDefaulted(t *testing.T) {
	rec, subs, err := Normalize(rawRecord(9, FieldTitle, "Brave"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := CleanRecord{Title: "Brave", Year: MinYear, Awards: AwardsNo}
	if !reflect.DeepEqual(rec, want) {
		t.Errorf("got %+v, want %+v", rec, want)
	}

	// year, length, popularity, awards and image are reported missing
	if len(subs) != 5 {
		t.Errorf("got %d substitutions, want 5: %+v", len(subs), subs)
	}
	for _, s := range subs {
		if s.Present {
			t.Errorf("substitution for %s should be marked missing", s.Field)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []RawRecord{
		rawRecord(2, FieldTitle, "Cars", FieldYear, "2006", FieldLength, "117", FieldPopularity, "73",
			FieldAwards, "no", FieldImage, "cars.jpg"),
		rawRecord(3, FieldTitle, "Amélie", FieldYear, "1700", FieldSubject, "Comedy", FieldActress, "Audrey Tautou",
			FieldAwards, "YES", FieldPopularity, "-4"),
		rawRecord(4, FieldTitle, "Up", FieldLength, "96.5", FieldImage, "UP.PNG"),
	}

	for _, in := range inputs {
		first, _, err := Normalize(in)
		if err != nil {
			t.Fatalf("line %d: %v", in.Line, err)
		}
		second, subs, err := Normalize(first.Raw(in.Line))
		if err != nil {
			t.Fatalf("line %d second pass: %v", in.Line, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("line %d: not idempotent\nfirst:  %+v\nsecond: %+v", in.Line, first, second)
		}
		for _, s := range subs {
			// Only absent optional values may be reported again
			if s.Present {
				t.Errorf("line %d: second pass substituted %s=%q", in.Line, s.Field, s.Value)
			}
		}
	}
}

func TestLogSubstitutions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logSubstitutions(logger, 12, []Substitution{
		{Field: FieldYear, Value: "abc", Present: true, Substituted: MinYear, Reason: "invalid integer"},
	})

	out := buf.String()
	for _, want := range []string{"level=WARN", "line=12", "field=year", "value=abc", "substitution=1888"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}
