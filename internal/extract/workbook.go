package extract

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// WorkbookSource extracts from the desktop database's workbook export:
// one sheet per table, first row is the header. Desktop tables carry
// their original display names ("Order Details"), normalized here to
// the logical table names.
type WorkbookSource struct {
	file   *xlsx.File
	sheets map[string]*xlsx.Sheet // logical table name → sheet
}

// NewWorkbookSource opens the workbook. A missing or unreadable file
// is ErrSourceUnavailable.
func NewWorkbookSource(path string) (*WorkbookSource, error) {
	if path == "" {
		return nil, eris.Wrap(ErrSourceUnavailable, "extract: desktop workbook_path not configured")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, eris.Wrapf(ErrSourceUnavailable, "extract: desktop workbook %s: %v", path, err)
	}
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(ErrSourceUnavailable, "extract: desktop workbook open %s: %v", path, err)
	}

	sheets := make(map[string]*xlsx.Sheet, len(f.Sheets))
	for _, sheet := range f.Sheets {
		sheets[normalizeSheetName(sheet.Name)] = sheet
	}
	return &WorkbookSource{file: f, sheets: sheets}, nil
}

func (s *WorkbookSource) Name() string { return SourceDesktop }

// Tables lists the logical tables present in the workbook.
func (s *WorkbookSource) Tables() []string {
	out := make([]string, 0, len(s.sheets))
	for name := range s.sheets {
		out = append(out, name)
	}
	return out
}

// Extract reads one sheet in full. A table the desktop database does
// not carry is simply absent, not an error: the caller decides whether
// a missing table matters.
func (s *WorkbookSource) Extract(ctx context.Context, table string) (*RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "extract: desktop cancelled")
	}
	log := zap.L().With(zap.String("component", "extract.desktop"), zap.String("table", table))

	sheet, ok := s.sheets[table]
	if !ok {
		return nil, eris.Errorf("extract: desktop workbook has no sheet for table %s", table)
	}

	out := &RawTable{
		Source:      SourceDesktop,
		Table:       table,
		ExtractedAt: time.Now().UTC(),
	}
	for i, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		if i == 0 {
			out.Header = cells
			continue
		}
		if isEmptyRow(cells) {
			continue
		}
		out.Rows = append(out.Rows, cells)
	}

	log.Debug("sheet extracted", zap.Int("rows", len(out.Rows)))
	return out, nil
}

func (s *WorkbookSource) Close() error { return nil }

// normalizeSheetName maps a desktop sheet name to the logical table
// name: "Order Details" → "order_details".
func normalizeSheetName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
