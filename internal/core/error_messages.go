package core

// error_messages.go maps pipeline errors to short messages with codes for
// support reference. Codes appear in log lines (key "code") and in the
// diagnostic printed when a strict run aborts.
//
// Record errors (REC001-REC099):
//
//	REC001 - Missing title: the row has no title and was not imported
//	         Action: Fill in the title column and re-import the row
//
// Submission errors (SUB001-SUB099):
//
//	SUB001 - Rejected by endpoint: the endpoint answered with a status other than 201
//	         Action: Check the logged http_status and http_resp
//	SUB002 - Endpoint unreachable: the request did not get a response
//	         Action: Check URL_OUT and that the endpoint is running
//
// Source errors (SRC001-SRC099):
//
//	SRC001 - Unreadable input: the input file could not be read or parsed
//	         Action: Check CSV_IN and the delimiter (CSV_DELIMITER)
//	SRC002 - Empty input: the input file has no header row
//
// Run errors (RUN001-RUN099):
//
//	RUN001 - Cancelled: the run was interrupted before it finished
//	RUN002 - Timed out: a deadline expired before the run finished

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage contains a readable error with an action and a support code.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

// errorPattern maps an error substring to a message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgMissingTitle = UserMessage{
		Message: "Record has no title",
		Action:  "Fill in the title column and re-import the row",
		Code:    "REC001",
	}
	msgRejected = UserMessage{
		Message: "Record rejected by endpoint",
		Action:  "Check the logged http_status and http_resp",
		Code:    "SUB001",
	}
	msgUnreachable = UserMessage{
		Message: "Endpoint unreachable",
		Action:  "Check URL_OUT and that the endpoint is running",
		Code:    "SUB002",
	}
	msgEmptyInput = UserMessage{
		Message: "Input file has no header row",
		Action:  "Check CSV_IN points at the movie export",
		Code:    "SRC002",
	}
	msgCancelled = UserMessage{
		Message: "Import was cancelled",
		Action:  "Re-run the import; rows already imported will be sent again",
		Code:    "RUN001",
	}
	msgTimeout = UserMessage{
		Message: "Import timed out",
		Action:  "Raise HTTP_TIMEOUT or check the endpoint latency",
		Code:    "RUN002",
	}
)

// errorPatterns is the fallback for errors without a typed match.
var errorPatterns = []errorPattern{
	{
		pattern: "read record",
		msg: UserMessage{
			Message: "Input file could not be read",
			Action:  "Check CSV_IN and the delimiter (CSV_DELIMITER)",
			Code:    "SRC001",
		},
	},
	{
		pattern: "open input",
		msg: UserMessage{
			Message: "Input file could not be opened",
			Action:  "Check CSV_IN",
			Code:    "SRC001",
		},
	},
	{
		pattern: "read header",
		msg: UserMessage{
			Message: "Input header could not be read",
			Action:  "Check the delimiter (CSV_DELIMITER)",
			Code:    "SRC001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the logs for the technical error",
	Code:    "ERR000",
}

// MapError converts a pipeline error to a user-facing message.
// Typed errors are matched first, then known substrings (case-insensitive).
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var subErr *SubmissionError
	switch {
	case errors.Is(err, ErrMissingRequiredField):
		return msgMissingTitle
	case errors.As(err, &subErr):
		if subErr.StatusCode == 0 {
			return msgUnreachable
		}
		return msgRejected
	case errors.Is(err, ErrEmptyFile):
		return msgEmptyInput
	case errors.Is(err, context.Canceled):
		return msgCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
