// Package validate runs the data-quality checks over the finished
// warehouse: existence, completeness, referential integrity, and
// surrogate-key uniqueness. Failures are reported, never corrected,
// and the warehouse is not mutated.
package validate

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/warehouse-cli/internal/warehouse"
)

// Status is the outcome of one check.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusSkipped Status = "skipped" // dependent check not run because a prerequisite failed
)

// Check is one validation verdict with its offending row count.
type Check struct {
	Name      string `yaml:"name"`
	Status    Status `yaml:"status"`
	Offending int    `yaml:"offending,omitempty"`
	Detail    string `yaml:"detail,omitempty"`
}

// Report is the per-run validation outcome. It is an artifact of the
// run, not part of the warehouse model.
type Report struct {
	RunID  string  `yaml:"run_id"`
	Checks []Check `yaml:"checks"`
}

// Passed reports overall success: every check passed.
func (r *Report) Passed() bool {
	for _, c := range r.Checks {
		if c.Status != StatusPass {
			return false
		}
	}
	return true
}

// Failing returns the names of non-passing checks.
func (r *Report) Failing() []string {
	var names []string
	for _, c := range r.Checks {
		if c.Status != StatusPass {
			names = append(names, fmt.Sprintf("%s (%s)", c.Name, c.Status))
		}
	}
	return names
}

// WriteYAML persists the report next to the warehouse outputs.
func (r *Report) WriteYAML(path string) error {
	out, err := yaml.Marshal(r)
	if err != nil {
		return eris.Wrap(err, "validate: marshal report")
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return eris.Wrapf(err, "validate: write %s", path)
	}
	return nil
}

// Thresholds configures the completeness check.
type Thresholds struct {
	// MaxNullRate is the highest tolerated null rate for descriptive
	// attributes. Surrogate keys must always be 0% null.
	MaxNullRate float64
}

// Validator runs the ordered check sequence over a warehouse snapshot.
type Validator struct {
	thresholds Thresholds
}

// New creates a Validator.
func New(t Thresholds) *Validator {
	return &Validator{thresholds: t}
}

// Run executes existence, completeness, referential-integrity, and
// uniqueness checks, in that order. When a table fails the existence
// check, its dependent checks are reported as skipped rather than
// silently passing.
func (v *Validator) Run(runID string, snap *warehouse.Snapshot) *Report {
	log := zap.L().With(zap.String("component", "validate"))
	report := &Report{RunID: runID}

	present := v.checkExistence(report, snap)
	v.checkCompleteness(report, snap, present)
	v.checkReferentialIntegrity(report, snap, present)
	v.checkUniqueness(report, snap, present)

	if report.Passed() {
		log.Info("validation passed", zap.Int("checks", len(report.Checks)))
	} else {
		log.Warn("validation failed", zap.Strings("failing", report.Failing()))
	}
	return report
}

// checkExistence verifies every expected table is present and
// non-empty. Returns the set of usable tables for dependent checks.
func (v *Validator) checkExistence(report *Report, snap *warehouse.Snapshot) map[string]bool {
	present := make(map[string]bool, len(warehouse.Tables))
	for _, t := range warehouse.Tables {
		n := rowCount(snap, t.Name)
		switch {
		case snap.IsMissing(t.Name):
			report.Checks = append(report.Checks, Check{
				Name:   "existence:" + t.Name,
				Status: StatusFail,
				Detail: "table missing from warehouse",
			})
		case n == 0:
			report.Checks = append(report.Checks, Check{
				Name:   "existence:" + t.Name,
				Status: StatusFail,
				Detail: "table is empty",
			})
		default:
			report.Checks = append(report.Checks, Check{
				Name:   "existence:" + t.Name,
				Status: StatusPass,
				Detail: fmt.Sprintf("%d rows", n),
			})
			present[t.Name] = true
		}
	}
	return present
}

// checkCompleteness verifies surrogate keys are never null and
// descriptive attribute null rates stay under the threshold.
func (v *Validator) checkCompleteness(report *Report, snap *warehouse.Snapshot, present map[string]bool) {
	for _, t := range warehouse.Tables {
		name := "completeness:" + t.Name
		if !present[t.Name] {
			report.Checks = append(report.Checks, Check{Name: name, Status: StatusSkipped})
			continue
		}

		total := rowCount(snap, t.Name)
		offending := 0
		var worst string
		for col, nulls := range nullCounts(snap, t.Name) {
			limit := v.thresholds.MaxNullRate
			if isSurrogate(col) {
				limit = 0
			}
			rate := float64(nulls) / float64(total)
			if rate > limit {
				offending += nulls
				worst = fmt.Sprintf("%s null rate %.2f exceeds %.2f", col, rate, limit)
			}
		}

		if offending > 0 {
			report.Checks = append(report.Checks, Check{Name: name, Status: StatusFail, Offending: offending, Detail: worst})
		} else {
			report.Checks = append(report.Checks, Check{Name: name, Status: StatusPass})
		}
	}
}

// checkReferentialIntegrity verifies every fact foreign key resolves
// to a dimension surrogate key.
func (v *Validator) checkReferentialIntegrity(report *Report, snap *warehouse.Snapshot, present map[string]bool) {
	deps := []string{warehouse.TableFactSales, warehouse.TableDimDate, warehouse.TableDimClient, warehouse.TableDimEmployee}
	for _, d := range deps {
		if !present[d] {
			report.Checks = append(report.Checks, Check{Name: "referential_integrity:FactSales", Status: StatusSkipped,
				Detail: d + " unavailable"})
			return
		}
	}

	dates := make(map[int64]bool, len(snap.Date))
	for _, r := range snap.Date {
		dates[r.SKDate] = true
	}
	clients := make(map[int64]bool, len(snap.Clients))
	for _, r := range snap.Clients {
		clients[r.SKClient] = true
	}
	employees := make(map[int64]bool, len(snap.Employees))
	for _, r := range snap.Employees {
		employees[r.SKEmployee] = true
	}

	orphans := 0
	var detail string
	for _, f := range snap.Facts {
		switch {
		case !dates[f.SKDate]:
			orphans++
			detail = fmt.Sprintf("fact %d: sk_date %d not in DimDate", f.FactID, f.SKDate)
		case !clients[f.SKClient]:
			orphans++
			detail = fmt.Sprintf("fact %d: sk_client %d not in DimClient", f.FactID, f.SKClient)
		case !employees[f.SKEmployee]:
			orphans++
			detail = fmt.Sprintf("fact %d: sk_employee %d not in DimEmployee", f.FactID, f.SKEmployee)
		}
	}

	if orphans > 0 {
		report.Checks = append(report.Checks, Check{Name: "referential_integrity:FactSales", Status: StatusFail, Offending: orphans, Detail: detail})
	} else {
		report.Checks = append(report.Checks, Check{Name: "referential_integrity:FactSales", Status: StatusPass})
	}
}

// checkUniqueness verifies no dimension holds a duplicate surrogate
// key or a duplicate natural key.
func (v *Validator) checkUniqueness(report *Report, snap *warehouse.Snapshot, present map[string]bool) {
	type dim struct {
		table    string
		sks      func() []int64
		naturals func() []string
	}
	dims := []dim{
		{warehouse.TableDimDate,
			func() []int64 { return mapSlice(snap.Date, func(r warehouse.DateRow) int64 { return r.SKDate }) },
			func() []string { return mapSlice(snap.Date, func(r warehouse.DateRow) string { return r.FullDate }) }},
		{warehouse.TableDimClient,
			func() []int64 { return mapSlice(snap.Clients, func(r warehouse.ClientRow) int64 { return r.SKClient }) },
			func() []string { return mapSlice(snap.Clients, func(r warehouse.ClientRow) string { return r.ClientID }) }},
		{warehouse.TableDimEmployee,
			func() []int64 { return mapSlice(snap.Employees, func(r warehouse.EmployeeRow) int64 { return r.SKEmployee }) },
			func() []string {
				return mapSlice(snap.Employees, func(r warehouse.EmployeeRow) string { return fmt.Sprint(r.EmployeeID) })
			}},
	}

	for _, d := range dims {
		name := "uniqueness:" + d.table
		if !present[d.table] {
			report.Checks = append(report.Checks, Check{Name: name, Status: StatusSkipped})
			continue
		}

		dups := countDuplicates(d.sks())
		dupNaturals := countDuplicateStrings(d.naturals())
		switch {
		case dups > 0:
			report.Checks = append(report.Checks, Check{Name: name, Status: StatusFail, Offending: dups, Detail: "duplicate surrogate keys"})
		case dupNaturals > 0:
			report.Checks = append(report.Checks, Check{Name: name, Status: StatusFail, Offending: dupNaturals, Detail: "duplicate natural keys"})
		default:
			report.Checks = append(report.Checks, Check{Name: name, Status: StatusPass})
		}
	}
}

func rowCount(snap *warehouse.Snapshot, table string) int {
	switch table {
	case warehouse.TableDimDate:
		return len(snap.Date)
	case warehouse.TableDimClient:
		return len(snap.Clients)
	case warehouse.TableDimEmployee:
		return len(snap.Employees)
	case warehouse.TableFactSales:
		return len(snap.Facts)
	}
	return 0
}

// nullCounts tallies null (empty) values per column. Surrogate and
// business keys are counted as null when non-positive or empty.
func nullCounts(snap *warehouse.Snapshot, table string) map[string]int {
	counts := make(map[string]int)
	addStr := func(col, v string) {
		if v == "" {
			counts[col]++
		}
	}
	addKey := func(col string, v int64) {
		if v <= 0 {
			counts[col]++
		}
	}

	switch table {
	case warehouse.TableDimDate:
		for _, r := range snap.Date {
			addKey("sk_date", r.SKDate)
			addStr("full_date", r.FullDate)
			addStr("month_name", r.MonthName)
		}
	case warehouse.TableDimClient:
		for _, r := range snap.Clients {
			addKey("sk_client", r.SKClient)
			addStr("bk_client_id", r.ClientID)
			addStr("company_name", r.CompanyName)
			addStr("city", r.City)
			addStr("region", r.Region)
			addStr("country", r.Country)
		}
	case warehouse.TableDimEmployee:
		for _, r := range snap.Employees {
			addKey("sk_employee", r.SKEmployee)
			addKey("bk_employee_id", r.EmployeeID)
			addStr("employee_name", r.Name)
			addStr("title", r.Title)
			addStr("city", r.City)
			addStr("country", r.Country)
		}
	case warehouse.TableFactSales:
		for _, r := range snap.Facts {
			addKey("fact_id", r.FactID)
			addKey("sk_date", r.SKDate)
			addKey("sk_client", r.SKClient)
			addKey("sk_employee", r.SKEmployee)
		}
	}
	return counts
}

// isSurrogate reports whether a column is a surrogate or business key
// that must be 0% null.
func isSurrogate(col string) bool {
	switch col {
	case "sk_date", "sk_client", "sk_employee", "fact_id", "bk_client_id", "bk_employee_id":
		return true
	}
	return false
}

func mapSlice[T any, V any](in []T, f func(T) V) []V {
	out := make([]V, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

func countDuplicates(keys []int64) int {
	seen := make(map[int64]bool, len(keys))
	dups := 0
	for _, k := range keys {
		if seen[k] {
			dups++
		}
		seen[k] = true
	}
	return dups
}

func countDuplicateStrings(keys []string) int {
	seen := make(map[string]bool, len(keys))
	dups := 0
	for _, k := range keys {
		if seen[k] {
			dups++
		}
		seen[k] = true
	}
	return dups
}
