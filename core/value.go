package core

import "fmt"

// Str renders a dynamically-typed circuit value as a string.
// Nil becomes the empty string; everything else goes through %v,
// so JSON numbers print without a trailing .0 for whole values.
func Str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Truthy reports whether a circuit value counts as true for branch
// decisions. Empty strings, zero numbers, nil, and empty collections
// are falsy; unknown types are truthy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// StrSlice coerces a circuit value into a list of strings. A bare
// string becomes a single-element list.
func StrSlice(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return t
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, Str(item))
		}
		return out
	default:
		return []string{Str(v)}
	}
}
