// Package core provides the business logic for importing movie records.
//
// The package is independent of configuration and process wiring. It can be
// driven by the importer command, by tests, or embedded in another service.
//
// # Pipeline
//
// An import run reads raw records lazily from a [RecordSource], normalizes
// each one with [Normalize] and submits it through a [RecordSubmitter]:
//
//	src, err := core.OpenCSV("movies.csv", core.DefaultDelimiter)
//	...
//	summary, err := core.Run(ctx, src, core.NewSubmitter(client, url), core.Options{})
//
// Every record is processed in its own goroutine, optionally capped by
// [Options.MaxConcurrent]. Records reach one of three terminal states:
// imported, rejected (no title) or submit_failed. Nothing is retried.
//
// # Normalization
//
// Fields are parsed independently. A bad value never fails the record; it is
// replaced by a default (year 1888, awards "No") or becomes absent, and the
// replacement is reported as a [Substitution] that the run logs as a warning.
// Only a missing or empty title rejects the record, with
// [ErrMissingRequiredField].
//
// Text fields that are not valid UTF-8 are decoded using a detected charset.
// Normalizing an already normalized record yields the same record.
//
// # Strict Mode
//
// With [Options.StopOnError], the first rejected or failed record cancels the
// run: outstanding submissions are cancelled and Run returns that error. The
// summary is returned either way.
//
// # Error Handling
//
// Errors are mapped to short messages with codes using [MapError]:
//
//   - REC001: Record errors (missing title)
//   - SUB001-SUB002: Submission errors (rejected, unreachable)
//   - SRC001-SRC002: Source errors (unreadable, empty)
//   - RUN001-RUN002: Run errors (cancelled, timed out)
package core
