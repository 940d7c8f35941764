// Package clean standardizes raw source records: canonical snake_case
// column names, enforced value kinds, and explicit null markers in
// place of source-specific null encodings. A row that fails coercion is
// dropped and logged; the batch is never failed.
package clean

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/warehouse-cli/internal/quality"
	"github.com/sells-group/warehouse-cli/internal/record"
)

// Column declares one canonical output column: the source names it may
// arrive under (already in canonical form) and the kind it must coerce to.
type Column struct {
	To   string
	Kind record.Kind
	From []string // canonical source-name aliases; defaults to {To}
}

// Mapping is the per-logical-table cleaning contract.
type Mapping struct {
	Table         string
	Columns       []Column
	NullSentinels []string // values treated as null after trimming; defaults apply when nil
}

// defaultNullSentinels are the source-specific null encodings seen in
// both source systems.
var defaultNullSentinels = []string{"", "NULL", "N/A", "NA", "-", "(null)"}

// CoercionError records one value that could not be coerced to its
// declared kind. It identifies the offending input row exactly.
type CoercionError struct {
	Source string
	Table  string
	Column string
	Row    int
	Value  string
	Kind   record.Kind
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("clean: %s.%s row %d: cannot coerce %q to %s (column %s)",
		e.Source, e.Table, e.Row, e.Value, e.Kind, e.Column)
}

// Stats counts per-table cleaning outcomes for later reporting.
type Stats struct {
	Input   int
	Kept    int
	Failed  int // rows dropped due to coercion failure
	Dropped int // degenerate rows (all columns null)
}

// dateLayouts covers the date renderings both sources produce.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"1/2/2006",
	"01/02/2006",
	"1/2/2006 15:04:05",
}

// Apply cleans one raw table according to its mapping. Coercion
// failures and degenerate rows are recorded in the quality log and the
// returned stats; surviving records carry canonical columns only.
func Apply(raws []record.Raw, m Mapping, q *quality.Log) ([]record.Clean, Stats) {
	log := zap.L().With(zap.String("component", "clean"), zap.String("table", m.Table))

	sentinels := m.NullSentinels
	if sentinels == nil {
		sentinels = defaultNullSentinels
	}

	stats := Stats{Input: len(raws)}
	out := make([]record.Clean, 0, len(raws))

rows:
	for _, raw := range raws {
		values := make(map[string]record.Value, len(m.Columns))
		allNull := true

		for _, col := range m.Columns {
			src := lookup(raw.Values, col)
			if isNull(src, sentinels) {
				values[col.To] = record.NullValue(col.Kind)
				continue
			}

			v, err := coerce(src, col.Kind)
			if err != nil {
				cerr := &CoercionError{
					Source: raw.Source,
					Table:  raw.Table,
					Column: col.To,
					Row:    raw.Row,
					Value:  src,
					Kind:   col.Kind,
				}
				q.Add(quality.Entry{
					Category: quality.CategoryCoercion,
					Source:   raw.Source,
					Table:    raw.Table,
					Row:      raw.Row,
					Column:   col.To,
					Reason:   cerr.Error(),
				})
				stats.Failed++
				continue rows
			}
			values[col.To] = v
			allNull = false
		}

		if allNull {
			q.Add(quality.Entry{
				Category: quality.CategoryDroppedRow,
				Source:   raw.Source,
				Table:    raw.Table,
				Row:      raw.Row,
				Reason:   "all columns null",
			})
			stats.Dropped++
			continue
		}

		out = append(out, record.Clean{
			Source:      raw.Source,
			Table:       m.Table,
			Row:         raw.Row,
			ExtractedAt: raw.ExtractedAt,
			Values:      values,
		})
		stats.Kept++
	}

	log.Debug("table cleaned",
		zap.Int("input", stats.Input),
		zap.Int("kept", stats.Kept),
		zap.Int("failed", stats.Failed),
		zap.Int("dropped", stats.Dropped),
	)
	return out, stats
}

// lookup finds the raw value for a column by trying each alias against
// the canonicalized source column names.
func lookup(values map[string]string, col Column) string {
	aliases := col.From
	if len(aliases) == 0 {
		aliases = []string{col.To}
	}
	for name, v := range values {
		canon := record.Canonical(name)
		for _, alias := range aliases {
			if canon == alias {
				return v
			}
		}
	}
	return ""
}

func isNull(s string, sentinels []string) bool {
	s = strings.TrimSpace(s)
	for _, n := range sentinels {
		if strings.EqualFold(s, n) {
			return true
		}
	}
	return false
}

// coerce converts a non-null source string to the declared kind.
func coerce(s string, k record.Kind) (record.Value, error) {
	s = strings.TrimSpace(s)
	switch k {
	case record.KindInteger:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			// Integer columns sometimes arrive rendered as "5.0".
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil || f != float64(int64(f)) {
				return record.Value{}, err
			}
			n = int64(f)
		}
		return record.IntValue(n), nil
	case record.KindNumber:
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		if err != nil {
			return record.Value{}, err
		}
		return record.NumberValue(f), nil
	case record.KindDate:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return record.DateValue(t), nil
			}
		}
		return record.Value{}, fmt.Errorf("unparseable date %q", s)
	default:
		return record.StringValue(s), nil
	}
}
