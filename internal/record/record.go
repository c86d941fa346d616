package record

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Record is a loosely typed object as returned by the Xano and ReZen APIs.
// The same concept is often stored under several keys depending on the
// upstream table, so every accessor takes the keys in priority order and
// returns the first usable value. Accessors never fail: a missing or
// unparseable value resolves to the zero value.
type Record map[string]any

// moneyCleaner strips currency formatting such as "$1,250,000.00".
var moneyCleaner = strings.NewReplacer("$", "", ",", "", " ", "")

// dateLayouts are tried in order for string dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// compactDateLayout is tried before epoch parsing for eight-digit strings
// such as "20240115".
const compactDateLayout = "20060102"

// epochMillisThreshold separates Unix seconds from Unix milliseconds.
// 1e11 seconds is year 5138, so anything above is treated as milliseconds.
const epochMillisThreshold = 1e11

// String returns the first non-empty string value among keys, trimmed.
func (r Record) String(keys ...string) string {
	for _, key := range keys {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// Money returns the first non-zero monetary value among keys.
// Zero amounts fall through to the next key, the same way the dashboards
// chain `volume || price || ...`.
func (r Record) Money(keys ...string) decimal.Decimal {
	for _, key := range keys {
		d, ok := toDecimal(r[key])
		if ok && !d.IsZero() {
			return d
		}
	}
	return decimal.Zero
}

// Time returns the first parseable, non-zero timestamp among keys, in UTC.
func (r Record) Time(keys ...string) (time.Time, bool) {
	for _, key := range keys {
		if t, ok := toTime(r[key]); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Bool reports whether any of keys holds a truthy value.
func (r Record) Bool(keys ...string) bool {
	for _, key := range keys {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "yes", "y":
				return true
			}
		}
		if b, err := cast.ToBoolE(v); err == nil && b {
			return true
		}
	}
	return false
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return x, true
	case string:
		s := moneyCleaner.Replace(strings.TrimSpace(x))
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(f), true
	}
}

func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return x.UTC(), !x.IsZero()
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		if len(s) == len(compactDateLayout) {
			if t, err := time.Parse(compactDateLayout, s); err == nil {
				return t.UTC(), true
			}
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return fromEpoch(n)
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		return time.Time{}, false
	default:
		n, err := cast.ToInt64E(v)
		if err != nil {
			return time.Time{}, false
		}
		return fromEpoch(n)
	}
}

func fromEpoch(n int64) (time.Time, bool) {
	if n <= 0 {
		return time.Time{}, false
	}
	if n > epochMillisThreshold {
		return time.UnixMilli(n).UTC(), true
	}
	return time.Unix(n, 0).UTC(), true
}
