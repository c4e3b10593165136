package loader

import "github.com/pkg/errors"

// ErrMalformedRecord classifies lines that cannot be stored: unparseable
// JSON, a non-object value, or a record without a usable id. Such lines are
// counted, logged and skipped, never fatal.
var ErrMalformedRecord = errors.New("malformed record")

// record is one decoded input line. The input is loosely structured, so
// fields are looked up by name and validated at split time.
type record map[string]any

// movieID returns the record id converted for storage. A missing, null or
// zero id disqualifies the record - zero is one of the dataset's "no data"
// sentinels and unusable as a primary key.
func (r record) movieID() (any, bool) {
	switch val := r["id"].(type) {
	case float64:
		if val == 0 {
			return nil, false
		}
		return int64(val), true
	case int64:
		if val == 0 {
			return nil, false
		}
		return val, true
	case int:
		if val == 0 {
			return nil, false
		}
		return int64(val), true
	case string:
		if val == "" {
			return nil, false
		}
		return val, true
	}
	return nil, false
}

// sub returns a nested object field, nil-safe.
func (r record) sub(field string) map[string]any {
	obj, _ := r[field].(map[string]any)
	return obj
}

// list returns the elements of a nested collection. Missing or null fields
// yield no elements. When nested is set the array lives one level down
// (videos.results).
func (r record) list(field string, nested string) []any {
	val := r[field]
	if nested != "" {
		obj, _ := val.(map[string]any)
		val = obj[nested]
	}
	elements, _ := val.([]any)
	return elements
}

func (r record) truthy(field string) bool {
	flag, _ := r[field].(bool)
	return flag
}

func (r record) str(field string) string {
	val, _ := r[field].(string)
	return val
}
