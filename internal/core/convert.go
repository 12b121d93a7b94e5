package core

// convert.go provides the per-field parsing rules for movie records.
//
// These functions handle the messy reality of the source data:
//   - Years that are not numbers or lie outside the history of cinema
//   - Lengths and popularity scores with garbage in them
//   - Awards written as yes/YES/Yes or something else entirely
//   - Image references that are not images
//
// Each function is pure: it returns the typed value and, when the raw value was
// rejected, a Substitution describing the default that replaced it. None of them
// fails the record.

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MinYear is the earliest accepted release year, and the default for bad years.
const MinYear = 1888

// Popularity bounds, inclusive.
const (
	MinPopularity = 0
	MaxPopularity = 100
)

// Awards values accepted by the endpoint.
const (
	AwardsYes = "Yes"
	AwardsNo  = "No"
)

// imageSuffixes are the accepted image file extensions (case-sensitive).
var imageSuffixes = []string{".png", ".jpg", ".jpeg"}

// missingReason is the substitution reason for fields absent from the row.
const missingReason = "field missing"

// parseYear converts a raw year to an integer in [MinYear, current year].
func parseYear(raw string, present bool) (int, *Substitution) {
	if !present {
		return MinYear, substitute(FieldYear, raw, false, MinYear, missingReason)
	}

	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return MinYear, substitute(FieldYear, raw, true, MinYear, "invalid integer")
	}

	maxYear := time.Now().Year()
	if year < MinYear || year > maxYear {
		return MinYear, substitute(FieldYear, raw, true, MinYear,
			fmt.Sprintf("year out of range [%d, %d]", MinYear, maxYear))
	}
	return year, nil
}

// parseLength converts a raw length (minutes) to a float, or absent.
func parseLength(raw string, present bool) (*float64, *Substitution) {
	if !present {
		return nil, substitute(FieldLength, raw, false, nil, missingReason)
	}

	f, err := parseFloat(raw)
	if err != nil {
		return nil, substitute(FieldLength, raw, true, nil, "invalid number")
	}
	return &f, nil
}

// parsePopularity converts a raw popularity to a float in [0, 100], or absent.
func parsePopularity(raw string, present bool) (*float64, *Substitution) {
	if !present {
		return nil, substitute(FieldPopularity, raw, false, nil, missingReason)
	}

	f, err := parseFloat(raw)
	if err != nil {
		return nil, substitute(FieldPopularity, raw, true, nil, "invalid number")
	}
	if f < MinPopularity || f > MaxPopularity {
		return nil, substitute(FieldPopularity, raw, true, nil,
			fmt.Sprintf("popularity out of range [%d, %d]", MinPopularity, MaxPopularity))
	}
	return &f, nil
}

// parseAwards maps a raw awards value to "Yes" or "No".
// Only a case-insensitive exact "yes" yields "Yes"; anything unrecognized is "No".
func parseAwards(raw string, present bool) (string, *Substitution) {
	if !present {
		return AwardsNo, substitute(FieldAwards, raw, false, AwardsNo, missingReason)
	}

	// Plain lowercasing, no Unicode folding: "yeſ" is not "yes"
	switch strings.ToLower(raw) {
	case "yes":
		return AwardsYes, nil
	case "no":
		return AwardsNo, nil
	default:
		return AwardsNo, substitute(FieldAwards, raw, true, AwardsNo, "unknown awards value")
	}
}

// parseImage keeps the raw image reference only if it ends in a supported suffix.
func parseImage(raw string, present bool) (*string, *Substitution) {
	if !present {
		return nil, substitute(FieldImage, raw, false, nil, missingReason)
	}

	for _, suffix := range imageSuffixes {
		if strings.HasSuffix(raw, suffix) {
			return &raw, nil
		}
	}
	return nil, substitute(FieldImage, raw, true, nil, "supported images are: png, jpg, jpeg")
}

// parseFloat parses a finite float, ignoring surrounding whitespace.
func parseFloat(raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite number %q", raw)
	}
	return f, nil
}

func substitute(field, raw string, present bool, substituted any, reason string) *Substitution {
	return &Substitution{
		Field:       field,
		Value:       raw,
		Present:     present,
		Substituted: substituted,
		Reason:      reason,
	}
}
