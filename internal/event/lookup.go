package event

// Lookup walks nested maps along path and returns the value at the end.
// Any missing key or non-map intermediate yields (nil, false), never an error.
// Provider payloads vary by event kind and library version, so every field
// access goes through this instead of trusting the shape.
func Lookup(m map[string]any, path ...string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}

	var current any = m
	for _, key := range path {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[key]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// StringAt returns the value at path rendered as a string. Absent fields and
// non-scalar values yield "".
func StringAt(m map[string]any, path ...string) string {
	v, ok := Lookup(m, path...)
	if !ok {
		return ""
	}

	switch t := v.(type) {
	case string:
		return t
	case float64:
		return formatNumber(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// FirstString returns the first non-empty StringAt result across candidate
// paths, or "" when none resolves.
func FirstString(m map[string]any, paths ...[]string) string {
	for _, path := range paths {
		if s := StringAt(m, path...); s != "" {
			return s
		}
	}
	return ""
}
