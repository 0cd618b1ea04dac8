// internal/telemetry/value.go
package telemetry

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindInt Kind = iota
	KindDecimal
	KindText
	KindTime
	KindStatus
	KindUnavailable
)

// UnavailableText is how the unavailable sentinel renders as text.
const UnavailableText = "unavailable"

// Value is one decoded metric value.
// Unavailable is a value ("sensor not installed / reading invalid").
// A missing metric is a key absent from the Snapshot.
type Value struct {
	Kind Kind

	Int    int64
	Dec    decimal.Decimal
	Places int32
	Text   string
	Time   time.Time
}

func Int(v int64) Value { return Value{Kind: KindInt, Int: v} }

// Decimal stores d with a fixed number of decimal places for display.
func Decimal(d decimal.Decimal, places int32) Value {
	return Value{Kind: KindDecimal, Dec: d, Places: places}
}

func Text(s string) Value { return Value{Kind: KindText, Text: s} }

func Time(t time.Time) Value { return Value{Kind: KindTime, Time: t} }

// Status is an enumerated state: raw code plus its label.
func Status(code int64, label string) Value {
	return Value{Kind: KindStatus, Int: code, Text: label}
}

func Unavailable() Value { return Value{Kind: KindUnavailable} }

func (v Value) IsUnavailable() bool { return v.Kind == KindUnavailable }

// IsZero reports whether v is a zero reading: 0, 0.00 or empty text.
// Unavailable, time and status values are never zero.
func (v Value) IsZero() bool {
	switch v.Kind {
	case KindInt:
		return v.Int == 0
	case KindDecimal:
		return v.Dec.IsZero()
	case KindText:
		return v.Text == ""
	}
	return false
}

// Float returns the numeric value for numeric kinds.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindInt, KindStatus:
		return float64(v.Int), true
	case KindDecimal:
		f, _ := v.Dec.Float64()
		return f, true
	}
	return 0, false
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindDecimal:
		return v.Dec.StringFixed(v.Places)
	case KindText, KindStatus:
		return v.Text
	case KindTime:
		return v.Time.Format(time.RFC3339)
	}
	return UnavailableText
}

// Equal compares kind and payload. Decimals compare numerically.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInt:
		return v.Int == o.Int
	case KindDecimal:
		return v.Dec.Equal(o.Dec)
	case KindText:
		return v.Text == o.Text
	case KindTime:
		return v.Time.Equal(o.Time)
	case KindStatus:
		return v.Int == o.Int && v.Text == o.Text
	}
	return true
}

// MarshalJSON keeps numbers as JSON numbers; text, status, time and
// unavailable render as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindInt:
		return []byte(strconv.FormatInt(v.Int, 10)), nil
	case KindDecimal:
		return []byte(v.Dec.StringFixed(v.Places)), nil
	}
	return json.Marshal(v.String())
}
