package core

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

// detectCharset returns the best-guess charset name of b.
// Replaced in tests to exercise unsupported charsets.
var detectCharset = func(b []byte) (string, error) {
	res, err := chardet.NewTextDetector().DetectBest(b)
	if err != nil {
		return "", err
	}
	return res.Charset, nil
}

// reencode decodes text to UTF-8 using its best-guess charset.
//
// Valid UTF-8 is returned unchanged, so the function is idempotent. An empty
// string is absent and returns ("", nil). Anything that cannot be decoded
// returns an error wrapping ErrEncoding.
func reencode(s string) (string, error) {
	if s == "" || utf8.ValidString(s) {
		return s, nil
	}

	charset, err := detectCharset([]byte(s))
	if err != nil {
		return "", fmt.Errorf("%w: detect charset: %v", ErrEncoding, err)
	}
	// The bytes are already known not to be valid UTF-8.
	if strings.EqualFold(charset, "utf-8") {
		return "", fmt.Errorf("%w: invalid utf-8", ErrEncoding)
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("%w: unsupported charset %q", ErrEncoding, charset)
	}

	decoded, err := enc.NewDecoder().String(s)
	if err != nil {
		return "", fmt.Errorf("%w: decode %s: %v", ErrEncoding, charset, err)
	}
	if !utf8.ValidString(decoded) {
		return "", fmt.Errorf("%w: decode %s: invalid output", ErrEncoding, charset)
	}
	return decoded, nil
}

// parseText re-encodes an optional text field. Empty and missing values are
// absent without a warning; decode failures are substituted with absent.
func parseText(field, raw string) (*string, *Substitution) {
	if raw == "" {
		return nil, nil
	}
	s, err := reencode(raw)
	if err != nil {
		return nil, substitute(field, raw, true, nil, err.Error())
	}
	return &s, nil
}
