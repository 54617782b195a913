// Package normalize adapts the response envelopes the backend API uses
// (bare arrays, {data: [...]}, {products: [...]}, {meta: ...}, ...) into a
// plain list, a single object, or a {data, meta} page.
//
// The Extract* functions never fail: unknown shapes degrade to the
// fallback. The Decode* functions in decode.go recognise the same envelopes
// but report a *DecodeError instead, and are what the REST client uses.
package normalize

import (
	"encoding/json"
	"strconv"

	"souqnest/internal/domain"
)

// WrapperKeys is the ordered list of keys searched for a wrapped array.
var WrapperKeys = []string{
	"data", "products", "suppliers", "categories", "industries",
	"rfqs", "items", "results", "rows", "popularity", "topProducts",
}

const defaultLimit = 10

// Paginated is the canonical {data, meta} shape for list views.
type Paginated struct {
	Data []any        `json:"data"`
	Meta *domain.Meta `json:"meta"`
}

// ExtractArray returns response itself when it is an array, else the first
// array found under WrapperKeys, else fallback (empty when nil).
func ExtractArray(response any, fallback []any) []any {
	if arr, ok := findArray(response); ok {
		return arr
	}
	if fallback == nil {
		return []any{}
	}
	return fallback
}

// ExtractObject unwraps one level of {data: {...}}. Objects without such a
// key come back unchanged; arrays and non-objects yield fallback.
func ExtractObject(response any, fallback map[string]any) map[string]any {
	obj, ok := response.(map[string]any)
	if !ok {
		if fallback == nil {
			return map[string]any{}
		}
		return fallback
	}
	if inner, ok := obj["data"].(map[string]any); ok {
		return inner
	}
	return obj
}

// ExtractPaginated combines ExtractArray with metadata taken from "meta",
// "pagination" or a flat {total, page, limit, totalPages} object.
func ExtractPaginated(response any, fallback Paginated) Paginated {
	if response == nil {
		if fallback.Data == nil {
			fallback.Data = []any{}
		}
		return fallback
	}
	out := Paginated{Data: []any{}}
	if arr, ok := findArray(response); ok {
		out.Data = arr
	}
	if obj, ok := response.(map[string]any); ok {
		out.Meta = extractMeta(obj)
	}
	return out
}

func findArray(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case map[string]any:
		for _, k := range WrapperKeys {
			if arr, ok := t[k].([]any); ok {
				return arr, true
			}
		}
	}
	return nil, false
}

func extractMeta(obj map[string]any) *domain.Meta {
	for _, k := range []string{"meta", "pagination"} {
		if m, ok := obj[k].(map[string]any); ok {
			return metaFrom(m)
		}
	}
	if _, ok := obj["total"]; ok {
		return metaFrom(obj)
	}
	return nil
}

func metaFrom(m map[string]any) *domain.Meta {
	meta := &domain.Meta{}
	meta.Total, _ = toInt(m["total"])
	meta.Page, _ = toInt(m["page"])
	meta.Limit, _ = toInt(m["limit"])
	meta.TotalPages, _ = toInt(m["totalPages"])
	if meta.Page <= 0 {
		meta.Page = 1
	}
	if meta.Limit <= 0 {
		meta.Limit = defaultLimit
	}
	if meta.TotalPages <= 0 {
		meta.TotalPages = ceilDiv(meta.Total, meta.Limit)
	}
	return meta
}

func ceilDiv(total, limit int) int {
	if total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return int(f), true
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	}
	return 0, false
}

// Int reads a decoded JSON number, or a numeric string, as an int.
func Int(v any) (int, bool) { return toInt(v) }
