// Package sanitize normalizes arbitrary decoded JSON into a guaranteed shape
// before it enters an entity store. Stored collections survive schema drift,
// partial corruption and emptiness: a non-slice value degrades to an empty
// collection, and a single malformed item is replaced by the schema defaults
// without aborting the batch.
//
// The functions here operate on the generic JSON representation
// (map[string]any / []any). Stores re-encode the sanitized maps and decode
// them into their typed entities.
package sanitize

import "encoding/json"

// Schema declares how raw records of one entity are coerced into a valid
// shape. All fields are optional; the zero Schema passes records through
// untouched apart from nil → stub substitution.
type Schema struct {
	// Defaults are applied to the whole record last; raw values win on
	// field-name collision. A nil raw item yields a clone of Defaults.
	Defaults map[string]any

	// ArrayFields lists fields coerced to an empty slice when the raw value
	// is absent or not a slice.
	ArrayFields []string

	// ObjectFields maps field names to their per-field defaults. The raw
	// value, when it is an object, is shallow-merged over the defaults;
	// otherwise the defaults are used alone.
	ObjectFields map[string]map[string]any

	// Item, when set, replaces the field-level rules for each record. If it
	// returns an error for one item, that item becomes a clone of Defaults
	// and the rest of the batch continues.
	Item func(raw map[string]any) (map[string]any, error)
}

// Collection sanitizes a decoded JSON value expected to hold a list of
// records. A non-slice input (including nil) produces an empty, non-nil
// slice: reads fail open, never fatal. Each element is sanitized
// independently, so one bad record never poisons its neighbours.
func Collection(raw any, s Schema) []map[string]any {
	items, ok := raw.([]any)
	if !ok {
		return []map[string]any{}
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, sanitizeItem(item, s))
	}
	return out
}

// Single sanitizes one record. It returns nil when raw is absent or not a
// plain object (slices are not objects); otherwise the same field rules as
// Collection apply.
func Single(raw any, s Schema) map[string]any {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	return sanitizeItem(m, s)
}

func sanitizeItem(item any, s Schema) map[string]any {
	m, ok := item.(map[string]any)
	if !ok {
		// nil or wrong-typed item: stub record from defaults.
		return cloneMap(s.Defaults)
	}

	if s.Item != nil {
		out, err := s.Item(cloneMap(m))
		if err != nil || out == nil {
			return cloneMap(s.Defaults)
		}
		return out
	}

	out := cloneMap(m)

	for _, f := range s.ArrayFields {
		if _, ok := out[f].([]any); !ok {
			out[f] = []any{}
		}
	}

	for f, defaults := range s.ObjectFields {
		sub, ok := out[f].(map[string]any)
		if !ok {
			out[f] = cloneMap(defaults)
			continue
		}
		merged := cloneMap(defaults)
		for k, v := range sub {
			merged[k] = v
		}
		out[f] = merged
	}

	for k, v := range s.Defaults {
		if _, ok := out[k]; !ok {
			out[k] = clone(v)
		}
	}
	return out
}

// cloneMap deep-copies a map through the JSON type universe so sanitized
// records never alias schema defaults.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = clone(v)
	}
	return out
}

func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = clone(e)
		}
		return out
	default:
		return v
	}
}

// Decode round-trips a sanitized collection through JSON into a typed slice.
// It decodes each record independently, so one record whose field types do
// not fit the target (say a number where the struct wants a string) never
// drops its neighbours. A failing record degrades to the schema-default
// stub; a stub that itself fails to decode is skipped.
func Decode[T any](records []map[string]any, s Schema) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		item, err := DecodeOne[T](r)
		if err != nil {
			item, err = DecodeOne[T](cloneMap(s.Defaults))
			if err != nil {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

// DecodeOne round-trips one sanitized record into a typed value.
func DecodeOne[T any](record map[string]any) (T, error) {
	var out T
	buf, err := json.Marshal(record)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(buf, &out); err != nil {
		return out, err
	}
	return out, nil
}
