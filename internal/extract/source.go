// Package extract supplies raw records from the two source systems and
// persists them at the raw CSV stage boundary. Extraction is a thin
// collaborator: all cleaning and typing happens downstream.
package extract

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/warehouse-cli/internal/record"
)

// Source system names tagged onto every raw record.
const (
	SourceRDBMS   = "rdbms"
	SourceDesktop = "desktop"
)

// ErrSourceUnavailable marks a source that cannot be reached (refused
// connection, missing or locked file). Always fatal to the run.
var ErrSourceUnavailable = eris.New("extract: source unavailable")

// RawTable is one extracted source table: stringly-typed rows under
// the source's own column names.
type RawTable struct {
	Source      string
	Table       string
	ExtractedAt time.Time
	Header      []string
	Rows        [][]string
}

// Records converts the table to per-row raw records for the cleaner.
func (t *RawTable) Records() []record.Raw {
	out := make([]record.Raw, 0, len(t.Rows))
	for i, row := range t.Rows {
		values := make(map[string]string, len(t.Header))
		for j, col := range t.Header {
			if j < len(row) {
				values[col] = row[j]
			}
		}
		out = append(out, record.Raw{
			Source:      t.Source,
			Table:       t.Table,
			Row:         i + 1,
			ExtractedAt: t.ExtractedAt,
			Values:      values,
		})
	}
	return out
}

// Source supplies raw tables from one source system.
type Source interface {
	// Name returns the source system name ("rdbms" or "desktop").
	Name() string
	// Tables lists the logical tables this source can supply.
	Tables() []string
	// Extract reads one logical table in full.
	Extract(ctx context.Context, table string) (*RawTable, error)
	// Close releases the underlying connection or file handle.
	Close() error
}
