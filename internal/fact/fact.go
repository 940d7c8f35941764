// Package fact joins transaction-level records against the populated
// key map to produce the sales fact table. Rows whose foreign keys
// cannot all be resolved are routed to the unresolved sink with the
// failing key named; they never abort the run.
package fact

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/warehouse-cli/internal/dimension"
	"github.com/sells-group/warehouse-cli/internal/keymap"
	"github.com/sells-group/warehouse-cli/internal/quality"
	"github.com/sells-group/warehouse-cli/internal/record"
	"github.com/sells-group/warehouse-cli/internal/warehouse"
)

// Unresolved is one transaction row excluded from the fact table,
// with enough context to re-derive the offending input.
type Unresolved struct {
	Source  string `csv:"source" yaml:"source"`
	Table   string `csv:"table" yaml:"table"`
	Row     int    `csv:"row" yaml:"row"`
	OrderID int64  `csv:"bk_order_id" yaml:"bk_order_id"`
	Reason  string `csv:"reason" yaml:"reason"`
}

// Builder resolves fact foreign keys against the key map populated by
// the dimension builders. The key map must be fully populated before
// Build runs; this is the pipeline's phase barrier.
type Builder struct {
	keys *keymap.Map
	q    *quality.Log
}

// New creates a fact Builder.
func New(keys *keymap.Map, q *quality.Log) *Builder {
	return &Builder{keys: keys, q: q}
}

// Build joins order detail lines to their order headers and resolves
// the three dimension keys per line. Measures are coerced to two
// decimal places; negative quantities and amounts are retained but
// flagged for validator review.
func (b *Builder) Build(orders, details []record.Clean) ([]warehouse.FactRow, []Unresolved) {
	log := zap.L().With(zap.String("component", "fact"))

	ordersByID := make(map[int64]record.Clean, len(orders))
	for _, o := range orders {
		if v := o.Get("order_id"); !v.Null {
			ordersByID[v.Int] = o
		}
	}

	var rows []warehouse.FactRow
	var unresolved []Unresolved
	var factID int64

	for _, d := range details {
		orderV := d.Get("order_id")
		if orderV.Null {
			unresolved = append(unresolved, b.reject(d, 0, "order_id is null"))
			continue
		}
		order, ok := ordersByID[orderV.Int]
		if !ok {
			unresolved = append(unresolved, b.reject(d, orderV.Int, fmt.Sprintf("no order header for order_id %d", orderV.Int)))
			continue
		}

		skDate, reason := b.resolveDate(order)
		if reason != "" {
			unresolved = append(unresolved, b.reject(d, orderV.Int, reason))
			continue
		}
		skClient, reason := b.resolveClient(order)
		if reason != "" {
			unresolved = append(unresolved, b.reject(d, orderV.Int, reason))
			continue
		}
		skEmployee, reason := b.resolveEmployee(order)
		if reason != "" {
			unresolved = append(unresolved, b.reject(d, orderV.Int, reason))
			continue
		}

		quantity := d.Get("quantity").Int
		unitPrice := round2(d.Get("unit_price").Num)
		discount := round2(d.Get("discount").Num)
		total := round2(unitPrice * float64(quantity) * (1 - discount))

		if quantity < 0 || total < 0 {
			b.q.Add(quality.Entry{
				Category: quality.CategoryNegativeMeasure,
				Source:   d.Source,
				Table:    d.Table,
				Row:      d.Row,
				Reason:   fmt.Sprintf("negative measure on order %d: quantity=%d total=%.2f", orderV.Int, quantity, total),
			})
		}

		factID++
		rows = append(rows, warehouse.FactRow{
			FactID:         factID,
			OrderID:        orderV.Int,
			ProductID:      d.Get("product_id").Int,
			SKDate:         skDate,
			SKClient:       skClient,
			SKEmployee:     skEmployee,
			Quantity:       quantity,
			UnitPrice:      unitPrice,
			Discount:       discount,
			TotalAmount:    total,
			DeliveryStatus: deliveryStatus(order),
		})
	}

	log.Info("fact table built",
		zap.Int("rows", len(rows)),
		zap.Int("unresolved", len(unresolved)),
	)
	return rows, unresolved
}

func (b *Builder) resolveDate(order record.Clean) (int64, string) {
	v := order.Get("order_date")
	if v.Null {
		return 0, "order_date is null"
	}
	natural := v.Date.Format("2006-01-02")
	sk, ok := b.keys.Lookup(dimension.Date, record.KeyOf(natural))
	if !ok {
		return 0, "date " + natural + " not in date dimension"
	}
	return sk, ""
}

func (b *Builder) resolveClient(order record.Clean) (int64, string) {
	v := order.Get("customer_id")
	if v.Null {
		return 0, "customer_id is null"
	}
	id := strings.ToUpper(strings.TrimSpace(v.Format()))
	sk, ok := b.keys.Lookup(dimension.Client, record.KeyOf(id))
	if !ok {
		return 0, "client " + id + " not in client dimension"
	}
	return sk, ""
}

func (b *Builder) resolveEmployee(order record.Clean) (int64, string) {
	v := order.Get("employee_id")
	if v.Null {
		return 0, "employee_id is null"
	}
	sk, ok := b.keys.Lookup(dimension.Employee, record.KeyOf(v.Format()))
	if !ok {
		return 0, "employee " + v.Format() + " not in employee dimension"
	}
	return sk, ""
}

// reject routes one row to the unresolved sink and logs it.
func (b *Builder) reject(d record.Clean, orderID int64, reason string) Unresolved {
	b.q.Add(quality.Entry{
		Category: quality.CategoryUnresolved,
		Source:   d.Source,
		Table:    d.Table,
		Row:      d.Row,
		Reason:   reason,
	})
	return Unresolved{
		Source:  d.Source,
		Table:   d.Table,
		Row:     d.Row,
		OrderID: orderID,
		Reason:  reason,
	}
}

func deliveryStatus(order record.Clean) string {
	if order.Get("shipped_date").Null {
		return "Not Delivered"
	}
	return "Delivered"
}

// round2 coerces a measure to the warehouse's fixed DECIMAL(10,2)
// precision.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
