// Package codec converts loosely typed wire values into the native values
// stored by fields, and back into wire-safe forms for export.
package codec

import (
	"math"
	"strings"
	"time"

	"github.com/reoring/minimodel/internal/coerce"
)

// textLayouts are tried in order after RFC3339 when decoding text dates.
var textLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DecodeDate converts v into a time.Time. Numbers are epoch milliseconds.
// Text is parsed as RFC3339 (nano precision optional) and a few common
// layouts; when none match, the leading integer of the text is used as epoch
// milliseconds. ok is false when v cannot be converted.
func DecodeDate(v any) (t time.Time, ok bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case *time.Time:
		if d == nil {
			return time.Time{}, false
		}
		return *d, true
	case string:
		s := strings.TrimSpace(d)
		if t, err := parseRFC3339(s); err == nil {
			return t, true
		}
		for _, layout := range textLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		if ms, ok := coerce.ParseInt(s); ok {
			return time.UnixMilli(ms), true
		}
		return time.Time{}, false
	}
	if f, ok := coerce.Float(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(f)), true
	}
	return time.Time{}, false
}

// EncodeDate renders t in canonical wire form (UTC, RFC3339 with trailing
// zero fractions trimmed).
func EncodeDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}
