package warehouse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV_HeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "DimDate.csv")
	rows := []DateRow{
		{SKDate: 1, FullDate: "2012-01-01", Year: 2012, Month: 1, MonthName: "January", Quarter: 1},
	}
	require.NoError(t, WriteCSV(path, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sk_date,full_date,year,month,month_name,quarter\n1,2012-01-01,2012,1,January,1\n", string(data))
}

func TestReadCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "FactSales.csv")
	in := []FactRow{
		{FactID: 1, OrderID: 10248, ProductID: 11, SKDate: 1, SKClient: 1, SKEmployee: 1,
			Quantity: 12, UnitPrice: 14, Discount: 0.05, TotalAmount: 159.6, DeliveryStatus: "Delivered"},
		{FactID: 2, OrderID: 10249, ProductID: 42, SKDate: 2, SKClient: 1, SKEmployee: 1,
			Quantity: 1, UnitPrice: 5.5, TotalAmount: 5.5, DeliveryStatus: "Not Delivered"},
	}
	require.NoError(t, WriteCSV(path, in))

	var out []FactRow
	require.NoError(t, ReadCSV(path, &out))
	assert.Equal(t, in, out)
}

func TestReadCSV_MissingFile(t *testing.T) {
	var out []DateRow
	err := ReadCSV(filepath.Join(t.TempDir(), "absent.csv"), &out)
	assert.Error(t, err)
}
