package core

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

// latin1 converts s to ISO-8859-1 bytes. s must only hold runes below 256.
func latin1(s string) string {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		b = append(b, byte(r))
	}
	return string(b)
}

// withDetector swaps the charset detector for the duration of a test.
func withDetector(t *testing.T, fn func([]byte) (string, error)) {
	t.Helper()
	orig := detectCharset
	detectCharset = fn
	t.Cleanup(func() { detectCharset = orig })
}

func TestReencode_ValidUTF8Unchanged(t *testing.T) {
	withDetector(t, func([]byte) (string, error) {
		t.Error("detector must not run on valid UTF-8")
		return "", nil
	})

	for _, s := range []string{"", "Cars", "Amélie", "千と千尋の神隠し"} {
		got, err := reencode(s)
		if err != nil {
			t.Fatalf("reencode(%q) error: %v", s, err)
		}
		if got != s {
			t.Errorf("reencode(%q) = %q", s, got)
		}
	}
}

func TestReencode_DetectedCharset(t *testing.T) {
	withDetector(t, func([]byte) (string, error) { return "ISO-8859-1", nil })

	got, err := reencode(latin1("Amélie"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Amélie" {
		t.Errorf("got %q, want %q", got, "Amélie")
	}

	// Idempotent: decoding the output again changes nothing
	again, err := reencode(got)
	if err != nil || again != got {
		t.Errorf("second pass = %q, %v", again, err)
	}
}

func TestReencode_RealDetector(t *testing.T) {
	text := "Le fabuleux destin d'Amélie Poulain est une comédie romantique française réalisée par " +
		"Jean-Pierre Jeunet. Amélie, serveuse dans un café de Montmartre, décide de changer la vie " +
		"des gens qui l'entourent et découvre l'amour à travers une série de rencontres étonnantes."

	got, err := reencode(latin1(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("output is not valid UTF-8: %q", got)
	}
	if !strings.Contains(got, "Amélie") {
		t.Errorf("decoded text %q does not contain %q", got, "Amélie")
	}
}

func TestReencode_Failures(t *testing.T) {
	tests := []struct {
		name     string
		detector func([]byte) (string, error)
	}{
		{
			name:     "detector error",
			detector: func([]byte) (string, error) { return "", errors.New("not enough data") },
		},
		{
			name:     "unsupported charset",
			detector: func([]byte) (string, error) { return "IBM420_ltr", nil },
		},
		{
			name:     "detected utf-8 on invalid bytes",
			detector: func([]byte) (string, error) { return "UTF-8", nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withDetector(t, tt.detector)

			got, err := reencode("bad\xff\xfe")
			if !errors.Is(err, ErrEncoding) {
				t.Fatalf("error = %v, want ErrEncoding", err)
			}
			if got != "" {
				t.Errorf("got %q, want empty", got)
			}
		})
	}
}

func TestParseText(t *testing.T) {
	withDetector(t, func([]byte) (string, error) { return "IBM420_ltr", nil })

	if got, sub := parseText(FieldActor, ""); got != nil || sub != nil {
		t.Errorf("empty value: got %v, %+v; want absent without substitution", got, sub)
	}

	got, sub := parseText(FieldActor, "Tom Hanks")
	if got == nil || *got != "Tom Hanks" || sub != nil {
		t.Errorf("valid value: got %v, %+v", got, sub)
	}

	got, sub = parseText(FieldDirector, "J\xe9r\xf4me")
	if got != nil {
		t.Errorf("undecodable value: got %q, want absent", *got)
	}
	if sub == nil || sub.Field != FieldDirector || sub.Substituted != nil {
		t.Errorf("undecodable value: substitution = %+v", sub)
	}
}
