package record

import (
	"strconv"
	"strings"
	"time"
)

// Kind enumerates the value types a clean column may carry.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindNumber
	KindDate
)

// String returns the declared-type name used in schema generation.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "string"
	}
}

// Value is a kind-tagged scalar with an explicit null marker. The zero
// Value is a null string.
type Value struct {
	Kind Kind
	Null bool
	Str  string
	Int  int64
	Num  float64
	Date time.Time
}

// Null values per kind, used by the cleaner when a null sentinel is hit.
func NullValue(k Kind) Value { return Value{Kind: k, Null: true} }

// StringValue builds a non-null string value.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IntValue builds a non-null integer value.
func IntValue(n int64) Value { return Value{Kind: KindInteger, Int: n} }

// NumberValue builds a non-null numeric value.
func NumberValue(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// DateValue builds a non-null date value, truncated to the day.
func DateValue(t time.Time) Value {
	return Value{Kind: KindDate, Date: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// Format renders the value for CSV output and key construction. Null
// values render as the empty string.
func (v Value) Format() string {
	if v.Null {
		return ""
	}
	switch v.Kind {
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindDate:
		return v.Date.Format("2006-01-02")
	default:
		return v.Str
	}
}

// Equal reports whether two values are the same attribute value.
// Strings compare after trimming, dates by calendar day.
func (v Value) Equal(o Value) bool {
	if v.Null || o.Null {
		return v.Null == o.Null
	}
	if v.Kind != o.Kind {
		return v.Format() == o.Format()
	}
	switch v.Kind {
	case KindInteger:
		return v.Int == o.Int
	case KindNumber:
		return v.Num == o.Num
	case KindDate:
		return v.Date.Equal(o.Date)
	default:
		return strings.TrimSpace(v.Str) == strings.TrimSpace(o.Str)
	}
}
