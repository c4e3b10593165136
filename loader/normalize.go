package loader

// normalize converts a raw JSON value into its storage form. The source
// dataset uses 0, "", [] and {} interchangeably with null as "no data"
// sentinels; all of them become SQL NULL so downstream queries treat them
// identically. Booleans become 1/0 integers for cheap predicates and
// indexing. Everything else passes through. Total over any JSON value.
func normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case bool:
		if val {
			return int64(1)
		}
		return int64(0)
	case string:
		if val == "" {
			return nil
		}
		return val
	case float64:
		if val == 0 {
			return nil
		}
		return val
	case int:
		if val == 0 {
			return nil
		}
		return val
	case int64:
		if val == 0 {
			return nil
		}
		return val
	case []any:
		if len(val) == 0 {
			return nil
		}
		return val
	case map[string]any:
		if len(val) == 0 {
			return nil
		}
		return val
	}
	return v
}
