package dimension

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/warehouse-cli/internal/keymap"
	"github.com/sells-group/warehouse-cli/internal/record"
	"github.com/sells-group/warehouse-cli/internal/warehouse"
)

// Territory is the enrichment attached to one employee by the
// territory mapping collaborator.
type Territory struct {
	Territories string // comma-joined territory descriptions
	SalesRegion string // comma-joined distinct region descriptions
}

// BuildTerritoryMapping joins the employee-territory assignments
// against territory and region records, aggregating one Territory per
// employee id. Any of the three inputs may be empty; employees simply
// stay unenriched.
func BuildTerritoryMapping(assignments, territories, regions []record.Clean) map[int64]Territory {
	terrByID := make(map[string]record.Clean, len(territories))
	for _, t := range territories {
		terrByID[t.Get("territory_id").Format()] = t
	}
	regionByID := make(map[int64]string, len(regions))
	for _, r := range regions {
		if v := r.Get("region_id"); !v.Null {
			regionByID[v.Int] = strings.TrimSpace(r.Get("region_description").Format())
		}
	}

	type agg struct {
		territories []string
		regions     map[string]bool
	}
	byEmployee := make(map[int64]*agg)
	for _, a := range assignments {
		empV := a.Get("employee_id")
		if empV.Null {
			continue
		}
		terr, ok := terrByID[a.Get("territory_id").Format()]
		if !ok {
			continue
		}

		e := byEmployee[empV.Int]
		if e == nil {
			e = &agg{regions: make(map[string]bool)}
			byEmployee[empV.Int] = e
		}
		if desc := strings.TrimSpace(terr.Get("territory_description").Format()); desc != "" {
			e.territories = append(e.territories, desc)
		}
		if rv := terr.Get("region_id"); !rv.Null {
			if region := regionByID[rv.Int]; region != "" {
				e.regions[region] = true
			}
		}
	}

	out := make(map[int64]Territory, len(byEmployee))
	for id, e := range byEmployee {
		regions := make([]string, 0, len(e.regions))
		for r := range e.regions {
			regions = append(regions, r)
		}
		sort.Strings(regions)
		out[id] = Territory{
			Territories: strings.Join(e.territories, ", "),
			SalesRegion: strings.Join(regions, ", "),
		}
	}
	return out
}

// BuildEmployees builds the employee dimension from conformed employee
// records, deduplicated on employee id and enriched with territory
// assignments. An employee unmatched in the territory mapping is
// retained with null territory attributes, never dropped. An entirely
// empty input is fatal to the run.
func BuildEmployees(conformed []record.Clean, territoryByID map[int64]Territory, keys *keymap.Map) ([]warehouse.EmployeeRow, error) {
	if len(conformed) == 0 {
		return nil, eris.New("dimension: employee source is empty")
	}
	log := zap.L().With(zap.String("component", "dimension.employee"))

	seen := make(map[record.NaturalKey]bool, len(conformed))
	rows := make([]warehouse.EmployeeRow, 0, len(conformed))
	unmatched := 0
	for _, r := range conformed {
		idV := r.Get("employee_id")
		if idV.Null {
			continue
		}
		natural := record.KeyOf(idV.Format())
		if seen[natural] {
			continue
		}
		seen[natural] = true

		terr, ok := territoryByID[idV.Int]
		if !ok {
			unmatched++
		}

		rows = append(rows, warehouse.EmployeeRow{
			SKEmployee:  keys.Assign(Employee, natural),
			EmployeeID:  idV.Int,
			Name:        fullName(r),
			Title:       r.Get("title").Format(),
			City:        r.Get("city").Format(),
			Country:     r.Get("country").Format(),
			Territories: terr.Territories,
			SalesRegion: terr.SalesRegion,
		})
	}

	log.Debug("employee dimension built",
		zap.Int("rows", len(rows)),
		zap.Int("without_territory", unmatched),
	)
	return rows, nil
}

func fullName(r record.Clean) string {
	first := strings.TrimSpace(r.Get("first_name").Format())
	last := strings.TrimSpace(r.Get("last_name").Format())
	return strings.TrimSpace(first + " " + last)
}
