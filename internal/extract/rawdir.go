package extract

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/charmap"
)

// RawPath returns the raw CSV path for a source table:
// <dir>/<source>_<table>.csv.
func RawPath(dir, source, table string) string {
	return filepath.Join(dir, source+"_"+table+".csv")
}

// WriteRaw persists an extracted table at the raw stage boundary so
// the transform stage can run independently of the source systems.
func WriteRaw(dir string, t *RawTable) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "extract: create raw dir %s", dir)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Header); err != nil {
		return eris.Wrapf(err, "extract: write raw header %s", t.Table)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return eris.Wrapf(err, "extract: write raw row %s", t.Table)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "extract: flush raw %s", t.Table)
	}

	path := RawPath(dir, t.Source, t.Table)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrapf(err, "extract: write %s", path)
	}
	return nil
}

// ReadRaw loads one raw CSV back into a RawTable. Desktop exports are
// occasionally Windows-1252 encoded; invalid UTF-8 input is decoded
// through that code page before parsing. The file's modification time
// stands in for the extraction time.
func ReadRaw(dir, source, table string) (*RawTable, error) {
	path := RawPath(dir, source, table)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: read %s", path)
	}
	if !utf8.Valid(data) {
		decoded, derr := charmap.Windows1252.NewDecoder().Bytes(data)
		if derr != nil {
			return nil, eris.Wrapf(derr, "extract: decode %s", path)
		}
		data = decoded
	}

	extractedAt := time.Now().UTC()
	if info, err := os.Stat(path); err == nil {
		extractedAt = info.ModTime().UTC()
	}

	r := csv.NewReader(strings.NewReader(string(data)))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "extract: parse %s", path)
	}
	if len(records) == 0 {
		return nil, eris.Errorf("extract: %s has no header row", path)
	}

	return &RawTable{
		Source:      source,
		Table:       table,
		ExtractedAt: extractedAt,
		Header:      records[0],
		Rows:        records[1:],
	}, nil
}

// HasRaw reports whether a raw file exists for a source table.
func HasRaw(dir, source, table string) bool {
	_, err := os.Stat(RawPath(dir, source, table))
	return err == nil
}
