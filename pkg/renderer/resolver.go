package renderer

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Display sentinels produced by value formatting.
const (
	missingDisplay = "N/A"
	unknownDisplay = "Unknown value"
)

// ResolveValue resolves a field name against the invoice data, giving global
// calculation results precedence over same-named data paths, and formats the
// result for display. Missing or unreachable values resolve to "N/A" rather
// than an error.
func ResolveValue(name string, data map[string]any, globals map[string]float64) string {
	if v, ok := globals[name]; ok {
		return formatNumber(v)
	}

	raw, ok := lookupPath(data, name)
	if !ok {
		return missingDisplay
	}
	return FormatValue(raw)
}

// lookupPath walks a dotted field path key by key. Indexing into anything
// that is not an object, or landing on a nil value, reports a miss.
func lookupPath(data map[string]any, path string) (any, bool) {
	var current any = data
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

// FormatValue turns a resolved raw value into its display string.
func FormatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return missingDisplay
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return formatNumber(value)
	case float32:
		return formatNumber(float64(value))
	case time.Time:
		return formatDate(value)
	case *time.Time:
		if value == nil {
			return missingDisplay
		}
		return formatDate(*value)
	case []any:
		return formatSlice(value)
	case []map[string]any:
		generic := make([]any, len(value))
		for i, item := range value {
			generic[i] = item
		}
		return formatSlice(generic)
	case []string:
		generic := make([]any, len(value))
		for i, item := range value {
			generic[i] = item
		}
		return formatSlice(generic)
	case map[string]any:
		encoded, err := json.Marshal(value)
		if err != nil {
			return unknownDisplay
		}
		return string(encoded)
	default:
		return unknownDisplay
	}
}

func formatSlice(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = FormatValue(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// formatDate renders a calendar date without a time component.
func formatDate(t time.Time) string {
	return t.Format("1/2/2006")
}

// formatNumber prints integers without a decimal point and floats without
// trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// toNumber coerces a raw value to a number the way the template language's
// arithmetic does: numerics pass through, booleans become 0/1, numeric
// strings parse (an empty string is zero), everything else fails.
func toNumber(v any) (float64, bool) {
	switch value := v.(type) {
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case bool:
		if value {
			return 1, true
		}
		return 0, true
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return 0, true
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
