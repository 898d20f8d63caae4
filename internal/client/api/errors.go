package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/dmitrijs2005/campusshop/internal/common"
)

// Problem is the decoded body of an error response: either FieldErrors or
// ErrorMessage.
type Problem interface {
	problem()
}

// FieldErrors maps a field name to the messages reported for it.
type FieldErrors map[string][]string

// ErrorMessage is a single server-provided message.
type ErrorMessage string

func (FieldErrors) problem()  {}
func (ErrorMessage) problem() {}

// messageKeys are checked in order for a single message.
var messageKeys = []string{"error", "detail", "message"}

// ParseProblem decodes an error body. It returns nil when the body carries
// nothing usable.
func ParseProblem(body []byte) Problem {
	if len(body) == 0 {
		return nil
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}

	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil
		}
		return ErrorMessage(v)
	case []any:
		msgs := stringsOf(v)
		if len(msgs) == 0 {
			return nil
		}
		return ErrorMessage(strings.Join(msgs, ", "))
	case map[string]any:
		for _, k := range messageKeys {
			if s, ok := v[k].(string); ok && s != "" {
				return ErrorMessage(s)
			}
		}
		fields := FieldErrors{}
		for k, val := range v {
			switch fv := val.(type) {
			case string:
				fields[k] = []string{fv}
			case []any:
				if msgs := stringsOf(fv); len(msgs) > 0 {
					fields[k] = msgs
				}
			}
		}
		if len(fields) > 0 {
			return fields
		}
	}
	return nil
}

func stringsOf(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		switch s := v.(type) {
		case string:
			out = append(out, s)
		case nil:
		default:
			out = append(out, fmt.Sprint(s))
		}
	}
	return out
}

// FormatProblem renders a Problem as one human-readable string. Field errors
// are ordered by field name: "email: already taken; password: too short, too common".
func FormatProblem(p Problem) string {
	switch v := p.(type) {
	case ErrorMessage:
		return string(v)
	case FieldErrors:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+": "+strings.Join(v[name], ", "))
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

// NetworkError means the request never produced a response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == common.ErrNetwork }

// ValidationError is a 400/422 answer: the server rejected the input.
type ValidationError struct {
	Status  int
	Problem Problem
}

func (e *ValidationError) Error() string {
	if msg := FormatProblem(e.Problem); msg != "" {
		return msg
	}
	return fmt.Sprintf("request rejected (status %d)", e.Status)
}

// Fields returns the per-field errors, or nil if the server sent a single message.
func (e *ValidationError) Fields() FieldErrors {
	f, _ := e.Problem.(FieldErrors)
	return f
}

// ServerError covers every other non-2xx status and bodies that could not
// be decoded into the expected shape.
type ServerError struct {
	Status  int
	Problem Problem
	Body    []byte
}

func (e *ServerError) Error() string {
	if msg := FormatProblem(e.Problem); msg != "" {
		return msg
	}
	return fmt.Sprintf("server error (status %d)", e.Status)
}

func (e *ServerError) Is(target error) bool {
	switch target {
	case common.ErrNotFound:
		return e.Status == http.StatusNotFound
	case common.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// ErrSessionExpired is returned when the credential could not be refreshed.
var ErrSessionExpired = fmt.Errorf("%w: session expired, please log in again", common.ErrUnauthorized)

func classify(status int, body []byte) error {
	problem := ParseProblem(body)
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &ValidationError{Status: status, Problem: problem}
	default:
		return &ServerError{Status: status, Problem: problem, Body: body}
	}
}

// MessageOf extracts the server-provided message from err, or returns
// fallback when the server did not send one.
func MessageOf(err error, fallback string) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		if msg := FormatProblem(ve.Problem); msg != "" {
			return msg
		}
		return fallback
	}
	var se *ServerError
	if errors.As(err, &se) {
		if msg := FormatProblem(se.Problem); msg != "" {
			return msg
		}
		return fallback
	}
	if errors.Is(err, ErrSessionExpired) {
		return ErrSessionExpired.Error()
	}
	return fallback
}
