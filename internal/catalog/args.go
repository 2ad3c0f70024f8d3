package catalog

import "encoding/json"

// Argument coercion helpers. Tool arguments arrive as map[string]any decoded
// from JSON, so numbers may be float64 or json.Number depending on the
// decoder in front of us.

// StringArg returns args[key] as a string, or def when absent or not a string.
func StringArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return def
}

// BoolArg returns args[key] as a bool, or def when absent or not a bool.
func BoolArg(args map[string]any, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

// IntArg returns args[key] as an int, or def when absent or non-numeric.
func IntArg(args map[string]any, key string, def int) int {
	if n, ok := intValue(args[key]); ok {
		return n
	}
	return def
}

// intValue coerces a decoded JSON value to an int, rejecting fractions.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}

// StringSliceArg returns args[key] as a []string, or nil when absent or of
// the wrong shape.
func StringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil
		}
		out = append(out, s)
	}
	return out
}

// MapArg returns args[key] as a map, or nil when absent or not an object.
func MapArg(args map[string]any, key string) map[string]any {
	if v, ok := args[key].(map[string]any); ok {
		return v
	}
	return nil
}
