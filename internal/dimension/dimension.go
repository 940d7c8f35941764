// Package dimension builds the three dimension tables from conformed
// records, allocating surrogate keys through the shared key map.
package dimension

// Dimension names used for surrogate key allocation. The fact builder
// resolves foreign keys against the same names.
const (
	Date     = "date"
	Client   = "client"
	Employee = "employee"
)
