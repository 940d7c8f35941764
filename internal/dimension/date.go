package dimension

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/warehouse-cli/internal/keymap"
	"github.com/sells-group/warehouse-cli/internal/record"
	"github.com/sells-group/warehouse-cli/internal/warehouse"
)

// BuildDate generates the date dimension: one row per calendar day
// from first to last inclusive, not just observed dates. The dimension
// is generated, never extracted from source.
func BuildDate(first, last time.Time, keys *keymap.Map) ([]warehouse.DateRow, error) {
	first = dayOf(first)
	last = dayOf(last)
	if last.Before(first) {
		return nil, eris.Errorf("dimension: date range end %s before start %s",
			last.Format("2006-01-02"), first.Format("2006-01-02"))
	}

	var rows []warehouse.DateRow
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		natural := d.Format("2006-01-02")
		rows = append(rows, warehouse.DateRow{
			SKDate:    keys.Assign(Date, record.KeyOf(natural)),
			FullDate:  natural,
			Year:      d.Year(),
			Month:     int(d.Month()),
			MonthName: d.Month().String(),
			Quarter:   (int(d.Month())-1)/3 + 1,
		})
	}
	return rows, nil
}

// DateRange finds the minimum and maximum order dates across the
// transaction source, used as the default generated range.
func DateRange(orders []record.Clean) (time.Time, time.Time, bool) {
	var first, last time.Time
	found := false
	for _, o := range orders {
		v := o.Get("order_date")
		if v.Null {
			continue
		}
		d := v.Date
		if !found || d.Before(first) {
			first = d
		}
		if !found || d.After(last) {
			last = d
		}
		found = true
	}
	return first, last, found
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
