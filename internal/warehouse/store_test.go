package warehouse

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Date: []DateRow{
			{SKDate: 1, FullDate: "2012-07-04", Year: 2012, Month: 7, MonthName: "July", Quarter: 3},
		},
		Clients: []ClientRow{
			{SKClient: 1, ClientID: "ALFKI", CompanyName: "Alfreds Futterkiste", City: "Berlin", Country: "Germany"},
		},
		Employees: []EmployeeRow{
			{SKEmployee: 1, EmployeeID: 5, Name: "Steven Buchanan", Title: "Sales Manager", City: "London", Country: "UK", Territories: "Wilton", SalesRegion: "Eastern"},
		},
		Facts: []FactRow{
			{FactID: 1, OrderID: 10248, ProductID: 11, SKDate: 1, SKClient: 1, SKEmployee: 1,
				Quantity: 12, UnitPrice: 14, TotalAmount: 168, DeliveryStatus: "Delivered"},
		},
	}
}

func TestStore_ReplaceAndSnapshot(t *testing.T) {
	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "warehouse.db"))
	require.NoError(t, err)
	defer store.Close()

	in := testSnapshot()
	require.NoError(t, store.Replace(ctx, in))

	out, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, out.Missing)
	assert.Equal(t, in.Date, out.Date)
	assert.Equal(t, in.Clients, out.Clients)
	assert.Equal(t, in.Employees, out.Employees)
	assert.Equal(t, in.Facts, out.Facts)
}

func TestStore_ReplaceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "warehouse.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Replace(ctx, testSnapshot()))

	// A second replace drops and reloads; row counts must not grow.
	require.NoError(t, store.Replace(ctx, testSnapshot()))

	out, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, out.Date, 1)
	assert.Len(t, out.Facts, 1)
}

func TestStore_EmptyAttributesReadBackEmpty(t *testing.T) {
	// Empty strings are stored as SQL NULL and come back empty.
	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "warehouse.db"))
	require.NoError(t, err)
	defer store.Close()

	snap := testSnapshot()
	snap.Clients[0].Region = ""
	require.NoError(t, store.Replace(ctx, snap))

	out, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, out.Clients, 1)
	assert.Empty(t, out.Clients[0].Region)
}

func TestStore_SnapshotOfEmptyDatabase(t *testing.T) {
	ctx := context.Background()
	store, err := Open(filepath.Join(t.TempDir(), "warehouse.db"))
	require.NoError(t, err)
	defer store.Close()

	out, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{TableDimDate, TableDimClient, TableDimEmployee, TableFactSales}, out.Missing)
}
