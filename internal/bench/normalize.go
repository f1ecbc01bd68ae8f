package bench

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// NormalizeRow converts an engine's raw result row into the canonical
// comparable shape: lower-cased field names, whole numbers as int64, other
// numbers as floats rounded to 2 decimal places, timestamps as ISO-8601
// strings, trimmed strings, booleans and nulls untouched. Idempotent.
func NormalizeRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[strings.ToLower(k)] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		return t
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	case uint:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	case float32:
		return normalizeNumber(float64(t))
	case float64:
		return normalizeNumber(t)
	case string:
		return normalizeString(t)
	case []byte:
		return normalizeString(string(t))
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return v
	}
}

// maxWholeFold bounds the integer fold: whole floats at or beyond 2^62
// stay floats, since int64(f) is undefined past the int64 range.
const maxWholeFold = float64(1 << 62)

// normalizeNumber folds whole values to int64 and rounds the rest to 2dp.
func normalizeNumber(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	if f == math.Trunc(f) && math.Abs(f) < maxWholeFold {
		return int64(f)
	}
	return math.Round(f*100) / 100
}

// normalizeString trims and, when the whole value parses as a number,
// coerces it. Fixed-point decimals reach Go as strings or byte slices
// depending on the driver, so the numeric rule has to apply here too.
func normalizeString(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return normalizeNumber(f)
	}
	return s
}
