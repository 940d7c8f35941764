package quality

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLog_CountAndSummary(t *testing.T) {
	l := NewLog("run-1")
	l.Add(Entry{Category: CategoryCoercion, Table: "orders", Row: 2, Reason: "bad int"})
	l.Add(Entry{Category: CategoryCoercion, Table: "orders", Row: 5, Reason: "bad date"})
	l.Add(Entry{Category: CategoryConflict, Table: "customers", Row: 1, Reason: "city differs"})

	assert.Equal(t, 2, l.Count(CategoryCoercion))
	assert.Equal(t, 1, l.Count(CategoryConflict))
	assert.Equal(t, 0, l.Count(CategoryUnresolved))
	assert.Equal(t, map[Category]int{CategoryCoercion: 2, CategoryConflict: 1}, l.Summary())
	assert.Len(t, l.Entries(), 3)
}

func TestLog_WriteYAML(t *testing.T) {
	l := NewLog("run-2")
	l.Add(Entry{Category: CategoryUnresolved, Source: "rdbms", Table: "order_details", Row: 9, Reason: "employee 9999 not in employee dimension"})

	path := filepath.Join(t.TempDir(), "quality_log.yaml")
	require.NoError(t, l.WriteYAML(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded struct {
		RunID   string           `yaml:"run_id"`
		Summary map[Category]int `yaml:"summary"`
		Entries []Entry          `yaml:"entries"`
	}
	require.NoError(t, yaml.Unmarshal(data, &loaded))
	assert.Equal(t, "run-2", loaded.RunID)
	assert.Equal(t, 1, loaded.Summary[CategoryUnresolved])
	require.Len(t, loaded.Entries, 1)
	assert.Equal(t, "order_details", loaded.Entries[0].Table)
}

func TestLog_EmptyLogWrites(t *testing.T) {
	l := NewLog("run-3")
	path := filepath.Join(t.TempDir(), "quality_log.yaml")
	require.NoError(t, l.WriteYAML(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "run_id: run-3")
}
