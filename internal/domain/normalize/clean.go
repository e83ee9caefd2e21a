package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var listDelimiters = regexp.MustCompile(`[,;|]`)

// CleanScalar trims and lowercases string values. Anything that is not a
// non-empty string becomes "".
func CleanScalar(v any) string {
	s, ok := v.(string)
	if !ok || s == "" {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// SplitAndClean splits a delimited field on commas, semicolons and pipes,
// trims each piece, drops empty pieces and lowercases the rest. Order and
// duplicates are preserved.
func SplitAndClean(v any) []string {
	s, ok := v.(string)
	if !ok || s == "" {
		return []string{}
	}
	parts := listDelimiters.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, strings.ToLower(p))
	}
	return out
}

// IdentifierString renders an observation identifier. Strings are kept
// verbatim; numbers are formatted and zero or NaN yields ""; true yields
// "true". Everything else yields "", which marks the row as unusable.
func IdentifierString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		f, err := id.Float64()
		if err != nil {
			return id.String()
		}
		return formatNumber(f)
	case float64:
		return formatNumber(id)
	case float32:
		return formatNumber(float64(id))
	case int:
		return formatNumber(float64(id))
	case int64:
		return formatNumber(float64(id))
	case int32:
		return formatNumber(float64(id))
	case uint:
		return formatNumber(float64(id))
	case uint64:
		return formatNumber(float64(id))
	case bool:
		if id {
			return "true"
		}
	}
	return ""
}

func formatNumber(f float64) string {
	if f == 0 || math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseSessionDate returns the parsed date or nil. It never fails: blank,
// non-string and unparseable values all yield nil.
func ParseSessionDate(v any) *time.Time {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return nil
		}
		t := d
		return &t
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
	}
	return nil
}
