package warehouse

import (
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// WriteCSV persists a table slice as a delimiter-separated text file
// with a header row. rows must be a slice of warehouse row structs.
func WriteCSV(path string, rows any) error {
	out, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrapf(err, "warehouse: marshal csv %s", path)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return eris.Wrapf(err, "warehouse: write csv %s", path)
	}
	return nil
}

// ReadCSV loads a staging or warehouse CSV back into a table slice.
// rows must be a pointer to a slice of warehouse row structs.
func ReadCSV(path string, rows any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "warehouse: read csv %s", path)
	}
	if err := csvutil.Unmarshal(data, rows); err != nil {
		return eris.Wrapf(err, "warehouse: unmarshal csv %s", path)
	}
	return nil
}
