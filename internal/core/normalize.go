package core

import (
	"fmt"
	"log/slog"
)

// Normalize turns one raw record into a clean record.
//
// A missing or empty title rejects the whole record with ErrMissingRequiredField.
// Every other field is parsed on its own and falls back to a default on failure;
// those fallbacks are returned as substitutions for the caller to log.
func Normalize(raw RawRecord) (CleanRecord, []Substitution, error) {
	rawTitle, _ := raw.Get(FieldTitle)
	if rawTitle == "" {
		return CleanRecord{}, nil, fmt.Errorf("%w: field=%s line=%d", ErrMissingRequiredField, FieldTitle, raw.Line)
	}

	title, err := reencode(rawTitle)
	if err != nil {
		return CleanRecord{}, nil, fmt.Errorf("%w: field=%s line=%d: %v", ErrMissingRequiredField, FieldTitle, raw.Line, err)
	}

	var subs []Substitution
	note := func(s *Substitution) {
		if s != nil {
			subs = append(subs, *s)
		}
	}

	rec := CleanRecord{Title: title}

	var s *Substitution
	rec.Year, s = parseYear(raw.Get(FieldYear))
	note(s)
	rec.Length, s = parseLength(raw.Get(FieldLength))
	note(s)
	rec.Popularity, s = parsePopularity(raw.Get(FieldPopularity))
	note(s)
	rec.Awards, s = parseAwards(raw.Get(FieldAwards))
	note(s)
	rec.Image, s = parseImage(raw.Get(FieldImage))
	note(s)

	for _, f := range []struct {
		name string
		dst  **string
	}{
		{FieldSubject, &rec.Subject},
		{FieldActor, &rec.Actor},
		{FieldActress, &rec.Actress},
		{FieldDirector, &rec.Director},
	} {
		v, _ := raw.Get(f.name)
		*f.dst, s = parseText(f.name, v)
		note(s)
	}

	return rec, subs, nil
}

// logSubstitutions emits one warning per substituted field.
func logSubstitutions(logger *slog.Logger, line int, subs []Substitution) {
	for _, s := range subs {
		logger.Warn("field substituted",
			"line", line,
			"field", s.Field,
			"value", s.Value,
			"present", s.Present,
			"substitution", s.Substituted,
			"reason", s.Reason,
		)
	}
}
