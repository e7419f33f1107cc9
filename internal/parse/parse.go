// Package parse converts loosely typed stored values into numbers and dates.
//
// Records written by older clients carry numbers as strings and dates as free
// form text, so every read goes through these functions. None of them fail:
// each returns a result whose OK flag tells the caller whether a fallback is
// needed.
package parse

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Number is the outcome of a numeric parse.
type Number struct {
	Value float64
	OK    bool
}

// OrZero returns the parsed value, or 0 when the input was not numeric.
func (n Number) OrZero() float64 {
	if !n.OK {
		return 0
	}
	return n.Value
}

// Instant is the outcome of a date parse.
type Instant struct {
	Value time.Time
	OK    bool
}

// Float interprets v as a float64. Missing, empty, NaN and non-numeric values
// produce an invalid Number.
func Float(v any) Number {
	var f float64
	switch t := v.(type) {
	case nil:
		return Number{}
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case primitive.Decimal128:
		parsed, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return Number{}
		}
		f = parsed
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return Number{}
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Number{}
		}
		f = parsed
	default:
		return Number{}
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{}
	}
	return Number{Value: f, OK: true}
}

// Date interprets v as a point in time. Native dates are returned unchanged;
// strings go through a permissive layout detector and are read as UTC when
// they carry no zone.
func Date(v any) Instant {
	switch t := v.(type) {
	case nil:
		return Instant{}
	case time.Time:
		if t.IsZero() {
			return Instant{}
		}
		return Instant{Value: t, OK: true}
	case *time.Time:
		if t == nil || t.IsZero() {
			return Instant{}
		}
		return Instant{Value: *t, OK: true}
	case primitive.DateTime:
		return Instant{Value: t.Time().UTC(), OK: true}
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return Instant{}
		}
		parsed, err := dateparse.ParseIn(s, time.UTC)
		if err != nil {
			return Instant{}
		}
		return Instant{Value: parsed, OK: true}
	default:
		return Instant{}
	}
}

// ISODate parses the strict YYYY-MM-DD or RFC3339 forms accepted on input.
func ISODate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
