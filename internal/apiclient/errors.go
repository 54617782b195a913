package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"

	"souqnest/internal/domain"
)

type Kind int

const (
	KindNetwork Kind = iota + 1
	KindTimeout
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// Error is returned for every failed backend call.
type Error struct {
	Kind    Kind
	Status  int // 0 when no response was received
	Method  string
	Path    string
	Message string
	Fields  map[string]string // per-field messages for KindValidation
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (%d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets callers match a 404 against domain.ErrNotFound.
func (e *Error) Is(target error) bool {
	return target == domain.ErrNotFound && e.Kind == KindNotFound
}

func kindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return (ok && k == KindNotFound) || errors.Is(err, domain.ErrNotFound)
}

func IsUnauthorized(err error) bool {
	k, ok := kindOf(err)
	return ok && (k == KindUnauthorized || k == KindForbidden)
}

func IsValidation(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindValidation
}

// IsConnection reports a failure to reach the backend at all.
func IsConnection(err error) bool {
	k, ok := kindOf(err)
	return ok && (k == KindNetwork || k == KindTimeout)
}

// FieldErrors returns the per-field messages of a validation error.
func FieldErrors(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) && e.Fields != nil {
		return e.Fields
	}
	return nil
}

func kindForStatus(status int) Kind {
	switch {
	case status == 400 || status == 422:
		return KindValidation
	case status == 401:
		return KindUnauthorized
	case status == 403:
		return KindForbidden
	case status == 404:
		return KindNotFound
	}
	return KindServer
}

type errorBody struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

// parseErrorBody pulls the message and field errors out of an error
// response. Field errors arrive either as [{field|path|param, message|msg}]
// or as {field: message}.
func parseErrorBody(body []byte) (string, map[string]string) {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return "", nil
	}
	msg := eb.Message
	if msg == "" {
		msg = eb.Error
	}
	if len(eb.Errors) == 0 {
		return msg, nil
	}

	fields := map[string]string{}
	var list []map[string]any
	if err := json.Unmarshal(eb.Errors, &list); err == nil {
		for _, item := range list {
			name := firstString(item, "field", "path", "param", "property")
			text := firstString(item, "message", "msg")
			if name != "" {
				fields[name] = text
			}
		}
	} else {
		var byField map[string]any
		if err := json.Unmarshal(eb.Errors, &byField); err == nil {
			for k, v := range byField {
				fields[k] = fmt.Sprint(v)
			}
		}
	}
	if len(fields) == 0 {
		return msg, nil
	}
	return msg, fields
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
