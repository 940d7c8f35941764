package dimension

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/warehouse-cli/internal/keymap"
	"github.com/sells-group/warehouse-cli/internal/record"
	"github.com/sells-group/warehouse-cli/internal/warehouse"
)

// BuildClients builds the client dimension from conformed customer
// records, deduplicated on the business client identifier. Geography
// attributes stay null when the sources carry none. An entirely empty
// input is fatal to the run.
func BuildClients(conformed []record.Clean, keys *keymap.Map) ([]warehouse.ClientRow, error) {
	if len(conformed) == 0 {
		return nil, eris.New("dimension: client source is empty")
	}
	log := zap.L().With(zap.String("component", "dimension.client"))

	seen := make(map[record.NaturalKey]bool, len(conformed))
	rows := make([]warehouse.ClientRow, 0, len(conformed))
	for _, r := range conformed {
		id := strings.ToUpper(strings.TrimSpace(r.Get("customer_id").Format()))
		if id == "" {
			continue
		}
		natural := record.KeyOf(id)
		if seen[natural] {
			continue
		}
		seen[natural] = true

		rows = append(rows, warehouse.ClientRow{
			SKClient:    keys.Assign(Client, natural),
			ClientID:    id,
			CompanyName: r.Get("company_name").Format(),
			City:        r.Get("city").Format(),
			Region:      r.Get("region").Format(),
			Country:     r.Get("country").Format(),
		})
	}

	log.Debug("client dimension built", zap.Int("rows", len(rows)))
	return rows, nil
}
