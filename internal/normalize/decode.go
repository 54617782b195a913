package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"souqnest/internal/domain"
)

// DecodeError reports a response whose envelope or elements did not match
// the expected type.
type DecodeError struct {
	Target string // Go type being decoded
	Shape  string // top-level shape actually received
	Err    error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("decode %s: unexpected response shape %s", e.Target, e.Shape)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeList decodes a list wrapped in any of the known envelopes.
func DecodeList[T any](body []byte) ([]T, error) {
	v, err := Parse(body)
	if err != nil {
		return nil, &DecodeError{Target: target[[]T](), Shape: "invalid json", Err: err}
	}
	arr, ok := findArray(v)
	if !ok {
		return nil, &DecodeError{Target: target[[]T](), Shape: Shape(v)}
	}
	out := make([]T, 0, len(arr))
	if err := remarshal(arr, &out); err != nil {
		return nil, &DecodeError{Target: target[[]T](), Shape: Shape(v), Err: err}
	}
	return out, nil
}

// DecodeObject decodes an object, unwrapping one level of {data: {...}}.
func DecodeObject[T any](body []byte) (T, error) {
	var out T
	v, err := Parse(body)
	if err != nil {
		return out, &DecodeError{Target: target[T](), Shape: "invalid json", Err: err}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return out, &DecodeError{Target: target[T](), Shape: Shape(v)}
	}
	if err := remarshal(ExtractObject(obj, nil), &out); err != nil {
		return out, &DecodeError{Target: target[T](), Shape: Shape(v), Err: err}
	}
	return out, nil
}

// DecodePage decodes a list plus pagination metadata. Meta is nil when the
// response carries none.
func DecodePage[T any](body []byte) (domain.Page[T], error) {
	var page domain.Page[T]
	v, err := Parse(body)
	if err != nil {
		return page, &DecodeError{Target: target[domain.Page[T]](), Shape: "invalid json", Err: err}
	}
	arr, ok := findArray(v)
	if !ok {
		return page, &DecodeError{Target: target[domain.Page[T]](), Shape: Shape(v)}
	}
	page.Data = make([]T, 0, len(arr))
	if err := remarshal(arr, &page.Data); err != nil {
		return page, &DecodeError{Target: target[domain.Page[T]](), Shape: Shape(v), Err: err}
	}
	if obj, ok := v.(map[string]any); ok {
		page.Meta = extractMeta(obj)
	}
	return page, nil
}

// Shape describes the top level of a decoded JSON value for error messages.
func Shape(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "object{" + strings.Join(keys, ",") + "}"
	case string:
		return "string"
	case bool:
		return "bool"
	default:
		return "number"
	}
}

// Parse decodes a JSON body into generic values, keeping numbers as
// json.Number.
func Parse(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func remarshal(in any, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func target[T any]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}
