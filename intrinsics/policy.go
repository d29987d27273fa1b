package intrinsics

import "strings"

// IAM statement effects.
const (
	EffectAllow = "Allow"
	EffectDeny  = "Deny"
)

// LogsActionPrefix is the IAM service prefix of CloudWatch Logs actions.
const LogsActionPrefix = "logs:"

// Arrayify normalizes an IAM statement value to a list.
// A list is returned unchanged; any other value becomes a one-element list.
//
// Example:
//
//	Arrayify("*")            → []any{"*"}
//	Arrayify([]any{"a","b"}) → []any{"a", "b"}
func Arrayify(v any) []any {
	switch val := v.(type) {
	case []any:
		return val
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}

// HasActionPrefix reports whether any string action starts with prefix.
// Non-string entries (intrinsics) never match.
func HasActionPrefix(actions []any, prefix string) bool {
	for _, a := range actions {
		if s, ok := a.(string); ok && strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
