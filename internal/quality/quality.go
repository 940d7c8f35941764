// Package quality accumulates per-row data quality findings for one
// pipeline run: coercion failures, merge conflicts, unresolved fact
// rows, flagged measures. Entries never abort the run; they are
// summarized at the end and persisted alongside the warehouse.
package quality

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Category classifies a quality log entry.
type Category string

const (
	CategoryCoercion        Category = "type_coercion"
	CategoryDroppedRow      Category = "dropped_row"
	CategoryConflict        Category = "attribute_conflict"
	CategoryUnresolved      Category = "unresolved_key"
	CategoryNegativeMeasure Category = "negative_measure"
)

// Entry is one recorded quality finding with enough context to
// re-derive the offending input row.
type Entry struct {
	Category Category `yaml:"category"`
	Source   string   `yaml:"source,omitempty"`
	Table    string   `yaml:"table,omitempty"`
	Row      int      `yaml:"row,omitempty"`
	Column   string   `yaml:"column,omitempty"`
	Reason   string   `yaml:"reason"`
}

// Log collects quality entries for a single run. Not safe for
// concurrent use; the transform phase is single-threaded.
type Log struct {
	RunID   string
	entries []Entry
}

// NewLog creates an empty quality log for the given run.
func NewLog(runID string) *Log {
	return &Log{RunID: runID}
}

// Add appends one entry.
func (l *Log) Add(e Entry) {
	l.entries = append(l.entries, e)
}

// Entries returns all recorded entries in insertion order.
func (l *Log) Entries() []Entry {
	return l.entries
}

// Count returns the number of entries in a category.
func (l *Log) Count(c Category) int {
	n := 0
	for _, e := range l.entries {
		if e.Category == c {
			n++
		}
	}
	return n
}

// Summary returns entry counts per category.
func (l *Log) Summary() map[Category]int {
	m := make(map[Category]int)
	for _, e := range l.entries {
		m[e.Category]++
	}
	return m
}

// artifact is the persisted YAML shape of the quality log.
type artifact struct {
	RunID   string           `yaml:"run_id"`
	Summary map[Category]int `yaml:"summary"`
	Entries []Entry          `yaml:"entries"`
}

// WriteYAML persists the log as a YAML artifact.
func (l *Log) WriteYAML(path string) error {
	out, err := yaml.Marshal(artifact{
		RunID:   l.RunID,
		Summary: l.Summary(),
		Entries: l.entries,
	})
	if err != nil {
		return eris.Wrap(err, "quality: marshal log")
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return eris.Wrapf(err, "quality: write %s", path)
	}
	return nil
}
