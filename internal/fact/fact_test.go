package fact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/warehouse-cli/internal/dimension"
	"github.com/sells-group/warehouse-cli/internal/keymap"
	"github.com/sells-group/warehouse-cli/internal/quality"
	"github.com/sells-group/warehouse-cli/internal/record"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// populatedKeys builds a key map as the dimension builders would have
// left it: one date, one client, one employee.
func populatedKeys() *keymap.Map {
	keys := keymap.New()
	keys.Assign(dimension.Date, record.KeyOf("2012-07-04"))
	keys.Assign(dimension.Client, record.KeyOf("ALFKI"))
	keys.Assign(dimension.Employee, record.KeyOf("5"))
	return keys
}

func order(id int64, customer string, employee int64, shipped bool) record.Clean {
	values := map[string]record.Value{
		"order_id":    record.IntValue(id),
		"customer_id": record.StringValue(customer),
		"employee_id": record.IntValue(employee),
		"order_date":  record.DateValue(time.Date(2012, 7, 4, 0, 0, 0, 0, time.UTC)),
	}
	if shipped {
		values["shipped_date"] = record.DateValue(time.Date(2012, 7, 16, 0, 0, 0, 0, time.UTC))
	} else {
		values["shipped_date"] = record.NullValue(record.KindDate)
	}
	return record.Clean{Source: "rdbms", Table: "orders", Row: 1, Values: values}
}

func detail(order, product, quantity int64, price, discount float64) record.Clean {
	return record.Clean{
		Source: "rdbms",
		Table:  "order_details",
		Row:    int(product),
		Values: map[string]record.Value{
			"order_id":   record.IntValue(order),
			"product_id": record.IntValue(product),
			"quantity":   record.IntValue(quantity),
			"unit_price": record.NumberValue(price),
			"discount":   record.NumberValue(discount),
		},
	}
}

func TestBuild_ResolvesAllKeys(t *testing.T) {
	q := quality.NewLog("test")
	b := New(populatedKeys(), q)

	rows, unresolved := b.Build(
		[]record.Clean{order(10248, "ALFKI", 5, true)},
		[]record.Clean{detail(10248, 11, 12, 14.0, 0.0)},
	)
	require.Len(t, rows, 1)
	assert.Empty(t, unresolved)

	f := rows[0]
	assert.Equal(t, int64(1), f.FactID)
	assert.Equal(t, int64(10248), f.OrderID)
	assert.Equal(t, int64(11), f.ProductID)
	assert.Equal(t, int64(1), f.SKDate)
	assert.Equal(t, int64(1), f.SKClient)
	assert.Equal(t, int64(1), f.SKEmployee)
	assert.Equal(t, int64(12), f.Quantity)
	assert.Equal(t, 168.0, f.TotalAmount)
	assert.Equal(t, "Delivered", f.DeliveryStatus)
}

func TestBuild_UnknownEmployeeRoutedToUnresolved(t *testing.T) {
	// An order naming an employee absent from the employee dimension
	// must not produce a fact row with a dangling key.
	q := quality.NewLog("test")
	b := New(populatedKeys(), q)

	rows, unresolved := b.Build(
		[]record.Clean{order(10249, "ALFKI", 9999, true)},
		[]record.Clean{detail(10249, 11, 5, 10.0, 0.0)},
	)
	assert.Empty(t, rows)
	require.Len(t, unresolved, 1)
	assert.Equal(t, int64(10249), unresolved[0].OrderID)
	assert.Contains(t, unresolved[0].Reason, "employee 9999")
	assert.Equal(t, 1, q.Count(quality.CategoryUnresolved))
}

func TestBuild_MissingOrderHeader(t *testing.T) {
	q := quality.NewLog("test")
	b := New(populatedKeys(), q)

	rows, unresolved := b.Build(nil, []record.Clean{detail(99999, 11, 5, 10.0, 0.0)})
	assert.Empty(t, rows)
	require.Len(t, unresolved, 1)
	assert.Contains(t, unresolved[0].Reason, "no order header")
}

func TestBuild_NullOrderDate(t *testing.T) {
	q := quality.NewLog("test")
	b := New(populatedKeys(), q)

	o := order(10250, "ALFKI", 5, false)
	o.Values["order_date"] = record.NullValue(record.KindDate)

	rows, unresolved := b.Build([]record.Clean{o}, []record.Clean{detail(10250, 11, 5, 10.0, 0.0)})
	assert.Empty(t, rows)
	require.Len(t, unresolved, 1)
	assert.Equal(t, "order_date is null", unresolved[0].Reason)
}

func TestBuild_TotalAmountAppliesDiscount(t *testing.T) {
	q := quality.NewLog("test")
	b := New(populatedKeys(), q)

	rows, _ := b.Build(
		[]record.Clean{order(10248, "ALFKI", 5, true)},
		[]record.Clean{detail(10248, 11, 10, 9.99, 0.1)},
	)
	require.Len(t, rows, 1)
	// 9.99 * 10 * 0.9, rounded to cents.
	assert.Equal(t, 89.91, rows[0].TotalAmount)
}

func TestBuild_NegativeQuantityFlaggedNotDropped(t *testing.T) {
	q := quality.NewLog("test")
	b := New(populatedKeys(), q)

	rows, unresolved := b.Build(
		[]record.Clean{order(10248, "ALFKI", 5, true)},
		[]record.Clean{detail(10248, 11, -3, 10.0, 0.0)},
	)
	require.Len(t, rows, 1)
	assert.Empty(t, unresolved)
	assert.Equal(t, int64(-3), rows[0].Quantity)
	assert.Equal(t, 1, q.Count(quality.CategoryNegativeMeasure))
}

func TestBuild_DeliveryStatusFromShippedDate(t *testing.T) {
	q := quality.NewLog("test")
	b := New(populatedKeys(), q)

	rows, _ := b.Build(
		[]record.Clean{order(10248, "ALFKI", 5, false)},
		[]record.Clean{detail(10248, 11, 1, 10.0, 0.0)},
	)
	require.Len(t, rows, 1)
	assert.Equal(t, "Not Delivered", rows[0].DeliveryStatus)
}

func TestBuild_FactIDsAreSequential(t *testing.T) {
	q := quality.NewLog("test")
	b := New(populatedKeys(), q)

	rows, _ := b.Build(
		[]record.Clean{order(10248, "ALFKI", 5, true)},
		[]record.Clean{
			detail(10248, 11, 1, 10.0, 0.0),
			detail(10248, 42, 2, 5.0, 0.0),
			detail(10248, 72, 3, 7.0, 0.0),
		},
	)
	require.Len(t, rows, 3)
	for i, r := range rows {
		assert.Equal(t, int64(i+1), r.FactID)
	}
}

func TestBuild_ClientIDCaseInsensitive(t *testing.T) {
	q := quality.NewLog("test")
	b := New(populatedKeys(), q)

	rows, unresolved := b.Build(
		[]record.Clean{order(10248, " alfki ", 5, true)},
		[]record.Clean{detail(10248, 11, 1, 10.0, 0.0)},
	)
	assert.Len(t, rows, 1)
	assert.Empty(t, unresolved)
}
