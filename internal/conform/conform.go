// Package conform merges equivalent entities arriving from both
// sources into one canonical row set, deduplicating on natural keys.
// Duplicates within a single source are folded before the cross-source
// merge, using the same conflict policy throughout.
package conform

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/warehouse-cli/internal/quality"
	"github.com/sells-group/warehouse-cli/internal/record"
)

// Conformer resolves attribute conflicts between sources. The
// authority map names, per entity type, the source whose values win
// outright; entities without a configured authority fall back to
// non-null preference and then extraction recency.
type Conformer struct {
	authority map[string]string
	q         *quality.Log
}

// New creates a Conformer with the given per-entity authoritative
// source configuration.
func New(authority map[string]string, q *quality.Log) *Conformer {
	return &Conformer{authority: authority, q: q}
}

// Conform groups records by the natural key formed from keyCols and
// returns one canonical record per key, in first-seen order. The
// result is deterministic for a given authority configuration: group
// members are folded in (extraction time, source, row) order.
func (c *Conformer) Conform(entity string, keyCols []string, recs []record.Clean) []record.Clean {
	log := zap.L().With(zap.String("component", "conform"), zap.String("entity", entity))

	groups := make(map[record.NaturalKey][]record.Clean)
	var order []record.NaturalKey
	for _, r := range recs {
		k := keyFor(r, keyCols)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	authority := c.authority[entity]
	out := make([]record.Clean, 0, len(order))
	conflicts := 0
	for _, k := range order {
		group := groups[k]
		sortGroup(group)

		// Fold same-source duplicates first, then merge across sources.
		bySource := make(map[string]record.Clean)
		var sources []string
		for _, r := range group {
			if base, ok := bySource[r.Source]; ok {
				bySource[r.Source] = c.merge(entity, k, base, r, authority, &conflicts)
			} else {
				bySource[r.Source] = r
				sources = append(sources, r.Source)
			}
		}

		canonical := bySource[sources[0]]
		for _, s := range sources[1:] {
			canonical = c.merge(entity, k, canonical, bySource[s], authority, &conflicts)
		}
		out = append(out, canonical)
	}

	log.Debug("entity conformed",
		zap.Int("input", len(recs)),
		zap.Int("canonical", len(out)),
		zap.Int("conflicts", conflicts),
	)
	return out
}

// merge combines two records for the same natural key into one.
func (c *Conformer) merge(entity string, key record.NaturalKey, a, b record.Clean, authority string, conflicts *int) record.Clean {
	// Work on the record whose provenance should survive: the
	// authoritative source if configured, else the later extraction.
	winner, loser := a, b
	switch {
	case authority != "" && b.Source == authority && a.Source != authority:
		winner, loser = b, a
	case authority != "" && a.Source == authority && b.Source != authority:
		// keep a
	case b.ExtractedAt.After(a.ExtractedAt):
		winner, loser = b, a
	}

	merged := record.Clean{
		Source:      winner.Source,
		Table:       winner.Table,
		Row:         winner.Row,
		ExtractedAt: winner.ExtractedAt,
		Values:      make(map[string]record.Value, len(winner.Values)),
	}
	for col, v := range winner.Values {
		merged.Values[col] = v
	}

	for col, lv := range loser.Values {
		wv, ok := merged.Values[col]
		switch {
		case !ok || wv.Null:
			// Non-null preference: fill gaps from the losing record.
			merged.Values[col] = lv
		case lv.Null || wv.Equal(lv):
			// Winner already holds the value.
		default:
			*conflicts++
			c.q.Add(quality.Entry{
				Category: quality.CategoryConflict,
				Source:   loser.Source,
				Table:    loser.Table,
				Row:      loser.Row,
				Column:   col,
				Reason:   "conflicting values for " + entity + " " + string(key) + ": kept " + winner.Source + "=" + wv.Format() + ", discarded " + loser.Source + "=" + lv.Format(),
			})
		}
	}
	return merged
}

// keyFor builds the natural key for a record from its key columns.
func keyFor(r record.Clean, keyCols []string) record.NaturalKey {
	parts := make([]string, len(keyCols))
	for i, col := range keyCols {
		parts[i] = r.Get(col).Format()
	}
	return record.KeyOf(parts...)
}

// sortGroup orders group members so folding is deterministic:
// extraction time, then source name, then row number.
func sortGroup(group []record.Clean) {
	sort.SliceStable(group, func(i, j int) bool {
		a, b := group[i], group[j]
		if !a.ExtractedAt.Equal(b.ExtractedAt) {
			return a.ExtractedAt.Before(b.ExtractedAt)
		}
		if cmp := strings.Compare(a.Source, b.Source); cmp != 0 {
			return cmp < 0
		}
		return a.Row < b.Row
	})
}
