// Package record holds the loosely-typed raw and typed clean record
// representations that flow between pipeline stages. Dynamic typing is
// confined to this package and internal/clean; downstream builders work
// with strict per-table structs.
package record

import (
	"strings"
	"time"
	"unicode"
)

// Raw is one untyped row as extracted from a source table: a column
// name → value mapping tagged with its origin. Consumed once by the
// cleaner and discarded after conforming.
type Raw struct {
	Source      string
	Table       string
	Row         int // 1-based row number within the source table
	ExtractedAt time.Time
	Values      map[string]string
}

// Clean is a Raw with canonical snake_case column names, enforced
// value kinds, and explicit null markers.
type Clean struct {
	Source      string
	Table       string
	Row         int
	ExtractedAt time.Time
	Values      map[string]Value
}

// Get returns the value for a canonical column, or a null value if the
// column is absent.
func (c Clean) Get(col string) Value {
	v, ok := c.Values[col]
	if !ok {
		return Value{Null: true}
	}
	return v
}

// NaturalKey identifies one real-world entity across sources.
type NaturalKey string

// KeyOf builds a NaturalKey from business-identifying parts. Parts are
// trimmed and upper-cased so "alfki " and "ALFKI" denote the same
// entity, and joined with "|" for composite keys.
func KeyOf(parts ...string) NaturalKey {
	cleaned := make([]string, len(parts))
	for i, p := range parts {
		cleaned[i] = strings.ToUpper(strings.TrimSpace(p))
	}
	return NaturalKey(strings.Join(cleaned, "|"))
}

// Canonical converts a source column name to its canonical snake_case
// form: "Order ID" → "order_id", "CompanyName" → "company_name".
func Canonical(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	b.Grow(len(name) + 4)
	prevLower := false
	for _, r := range name {
		switch {
		case r == ' ' || r == '-' || r == '.' || r == '/':
			if prevLower {
				b.WriteRune('_')
			}
			prevLower = false
		case r == '_':
			b.WriteRune('_')
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return strings.Trim(b.String(), "_")
}
