package clean

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/warehouse-cli/internal/quality"
	"github.com/sells-group/warehouse-cli/internal/record"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func rawOrder(row int, values map[string]string) record.Raw {
	return record.Raw{
		Source:      "rdbms",
		Table:       TableOrders,
		Row:         row,
		ExtractedAt: time.Date(2012, 6, 1, 0, 0, 0, 0, time.UTC),
		Values:      values,
	}
}

func TestApply_CoercesTypes(t *testing.T) {
	q := quality.NewLog("test")
	raws := []record.Raw{
		rawOrder(1, map[string]string{
			"OrderID":     "10248",
			"CustomerID":  "ALFKI",
			"EmployeeID":  "5",
			"OrderDate":   "2012-07-04",
			"ShippedDate": "2012-07-16 00:00:00",
		}),
	}

	out, stats := Apply(raws, Mappings[TableOrders], q)
	require.Len(t, out, 1)
	assert.Equal(t, Stats{Input: 1, Kept: 1}, stats)

	r := out[0]
	assert.Equal(t, int64(10248), r.Get("order_id").Int)
	assert.Equal(t, "ALFKI", r.Get("customer_id").Str)
	assert.Equal(t, int64(5), r.Get("employee_id").Int)
	assert.Equal(t, "2012-07-04", r.Get("order_date").Format())
	assert.Equal(t, "2012-07-16", r.Get("shipped_date").Format())
	assert.Zero(t, len(q.Entries()))
}

func TestApply_DesktopColumnAliases(t *testing.T) {
	// The desktop export renders headers with spaces and display names.
	q := quality.NewLog("test")
	raws := []record.Raw{{
		Source: "desktop",
		Table:  TableOrders,
		Row:    1,
		Values: map[string]string{
			"Order ID":     "10300",
			"Customer":     "BONAP",
			"Employee":     "3",
			"Order Date":   "1/15/2013",
			"Shipped Date": "",
		},
	}}

	out, _ := Apply(raws, Mappings[TableOrders], q)
	require.Len(t, out, 1)
	assert.Equal(t, int64(10300), out[0].Get("order_id").Int)
	assert.Equal(t, "BONAP", out[0].Get("customer_id").Str)
	assert.Equal(t, "2013-01-15", out[0].Get("order_date").Format())
	assert.True(t, out[0].Get("shipped_date").Null)
}

func TestApply_NullSentinels(t *testing.T) {
	q := quality.NewLog("test")
	for _, sentinel := range []string{"", "NULL", "null", "N/A", "na", "-", "(null)", "  "} {
		raws := []record.Raw{rawOrder(1, map[string]string{
			"OrderID":     "10248",
			"CustomerID":  "ALFKI",
			"ShippedDate": sentinel,
		})}
		out, _ := Apply(raws, Mappings[TableOrders], q)
		require.Len(t, out, 1, "sentinel %q", sentinel)
		assert.True(t, out[0].Get("shipped_date").Null, "sentinel %q should read as null", sentinel)
	}
}

func TestApply_CoercionFailureDropsRow(t *testing.T) {
	q := quality.NewLog("test")
	raws := []record.Raw{
		rawOrder(1, map[string]string{"OrderID": "10248", "CustomerID": "ALFKI", "OrderDate": "2012-07-04"}),
		rawOrder(2, map[string]string{"OrderID": "not-a-number", "CustomerID": "BONAP"}),
		rawOrder(3, map[string]string{"OrderID": "10250", "CustomerID": "FRANK", "OrderDate": "garbage"}),
	}

	out, stats := Apply(raws, Mappings[TableOrders], q)
	assert.Len(t, out, 1)
	assert.Equal(t, 3, stats.Input)
	assert.Equal(t, 1, stats.Kept)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 2, q.Count(quality.CategoryCoercion))

	// Each entry identifies the offending row.
	entries := q.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries[0].Row)
	assert.Equal(t, "order_id", entries[0].Column)
	assert.Equal(t, 3, entries[1].Row)
	assert.Equal(t, "order_date", entries[1].Column)
}

func TestApply_DegenerateRowDropped(t *testing.T) {
	q := quality.NewLog("test")
	raws := []record.Raw{
		rawOrder(1, map[string]string{"OrderID": "", "CustomerID": "NULL", "EmployeeID": "N/A"}),
	}

	out, stats := Apply(raws, Mappings[TableOrders], q)
	assert.Empty(t, out)
	assert.Equal(t, 1, stats.Dropped)
	assert.Equal(t, 1, q.Count(quality.CategoryDroppedRow))
}

func TestApply_IntegerRenderedAsFloat(t *testing.T) {
	q := quality.NewLog("test")
	raws := []record.Raw{rawOrder(1, map[string]string{"OrderID": "10248.0", "CustomerID": "ALFKI"})}

	out, _ := Apply(raws, Mappings[TableOrders], q)
	require.Len(t, out, 1)
	assert.Equal(t, int64(10248), out[0].Get("order_id").Int)
}

func TestApply_FractionalIntegerFails(t *testing.T) {
	q := quality.NewLog("test")
	raws := []record.Raw{rawOrder(1, map[string]string{"OrderID": "10248.5", "CustomerID": "ALFKI"})}

	out, stats := Apply(raws, Mappings[TableOrders], q)
	assert.Empty(t, out)
	assert.Equal(t, 1, stats.Failed)
}

func TestApply_NumberWithThousandsSeparator(t *testing.T) {
	q := quality.NewLog("test")
	raws := []record.Raw{{
		Source: "desktop",
		Table:  TableOrderDetails,
		Row:    1,
		Values: map[string]string{
			"Order ID": "10300", "Product": "7", "Unit Price": "1,234.50", "Quantity": "2", "Discount": "0",
		},
	}}

	out, _ := Apply(raws, Mappings[TableOrderDetails], q)
	require.Len(t, out, 1)
	assert.Equal(t, 1234.5, out[0].Get("unit_price").Num)
}

func TestCoercionError_Error(t *testing.T) {
	err := &CoercionError{Source: "rdbms", Table: "orders", Column: "order_id", Row: 7, Value: "x", Kind: record.KindInteger}
	assert.Contains(t, err.Error(), "orders")
	assert.Contains(t, err.Error(), "row 7")
	assert.Contains(t, err.Error(), "integer")
}
