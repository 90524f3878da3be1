package parse

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// tokenString renders a loosely typed scalar as a trimmed string.
// It reports false for absent, blank, or non-scalar values.
func tokenString(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", false
		}
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case bool:
		s = strconv.FormatBool(t)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// toNumber parses a loosely typed value as a finite float64.
func toNumber(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// maxQuantity bounds capacities, occupancies and walk times.
const maxQuantity = math.MaxInt32

// toQuantity is toNumber restricted to values in [0, maxQuantity].
func toQuantity(v any) *float64 {
	f, ok := toNumber(v)
	if !ok || f < 0 || f > maxQuantity {
		return nil
	}
	return &f
}
