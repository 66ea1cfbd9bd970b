package analyses

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// fields reads loosely typed provider JSON. The first missing or
// non-numeric required number is kept in the shared err slot.
type fields struct {
	path string
	m    map[string]any
	err  *error
}

func newFields(path string, m map[string]any) *fields {
	return &fields{path: path, m: m, err: new(error)}
}

func (f *fields) child(path string, m map[string]any) *fields {
	if m == nil {
		m = map[string]any{}
	}
	return &fields{path: path, m: m, err: f.err}
}

// Err returns the first required-field failure seen on this tree.
func (f *fields) Err() error {
	return *f.err
}

func (f *fields) name(key string) string {
	if f.path == "" {
		return key
	}
	return f.path + "." + key
}

// object descends into a nested object, sharing the error slot.
func (f *fields) object(key string) *fields {
	obj, _ := f.m[key].(map[string]any)
	return f.child(f.name(key), obj)
}

func (f *fields) fail(err error) {
	if *f.err == nil {
		*f.err = err
	}
}

// requiredNumber coerces a JSON number or numeric string.
func (f *fields) requiredNumber(key string) float64 {
	raw, ok := f.m[key]
	if !ok || raw == nil {
		f.fail(fmt.Errorf("missing numeric field %s", f.name(key)))
		return 0
	}
	v, ok := toNumber(raw)
	if !ok {
		f.fail(fmt.Errorf("field %s is not numeric", f.name(key)))
		return 0
	}
	return v
}

// number is like requiredNumber but missing or unreadable values become 0.
func (f *fields) number(key string) float64 {
	v, _ := toNumber(f.m[key])
	return v
}

func (f *fields) str(key string) string {
	switch v := f.m[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func (f *fields) strings(key string) []string {
	return extractStringSlice(f.m[key])
}

func (f *fields) objects(key string) []*fields {
	items, _ := f.m[key].([]any)
	out := make([]*fields, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, f.child(fmt.Sprintf("%s[%d]", f.name(key), i), obj))
	}
	return out
}

func toNumber(raw any) (float64, bool) {
	var (
		v   float64
		err error
	)
	switch n := raw.(type) {
	case json.Number:
		v, err = n.Float64()
	case float64:
		v = n
	case string:
		v, err = strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// extractStringSlice keeps string items and drops everything else. Absent
// or non-array values become an empty slice.
func extractStringSlice(value any) []string {
	items, _ := value.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func checkEnum(unknown *[]string, field, value string, allowed []string) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	*unknown = append(*unknown, field+"="+value)
}
