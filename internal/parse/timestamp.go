package parse

import (
	"math"
	"strings"
	"time"
)

// millisThreshold separates epoch seconds (~1e9 today) from epoch millis (~1e12).
const millisThreshold = 1e12

// maxMillis is the last millisecond of year 9999. Larger magnitudes are
// treated as unparsable.
const maxMillis = 253402300799999

// timestampLayouts are tried in order for non-numeric timestamps. Layouts
// without a zone are read in the caller's location.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// CoerceTimestamp converts a raw timestamp of unknown shape to epoch millis.
// Absent or unparsable input resolves to now.
func CoerceTimestamp(raw any, now time.Time, loc *time.Location) int64 {
	fallback := now.UnixMilli()

	switch t := raw.(type) {
	case nil:
		return fallback
	case bool:
		return fallback
	case string:
		if strings.TrimSpace(t) == "" {
			return fallback
		}
	}

	if n, ok := toNumber(raw); ok {
		if n == 0 {
			return fallback
		}
		ms := n
		if math.Abs(n) <= millisThreshold {
			ms = n * 1000
		}
		ms = math.Round(ms)
		if math.Abs(ms) > maxMillis {
			return fallback
		}
		return int64(ms)
	}

	s, ok := raw.(string)
	if !ok {
		return fallback
	}
	if parsed, ok := parseTime(strings.TrimSpace(s), loc); ok {
		return parsed.UnixMilli()
	}
	return fallback
}

func parseTime(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
