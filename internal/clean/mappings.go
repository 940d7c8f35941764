package clean

import "github.com/sells-group/warehouse-cli/internal/record"

// Logical source tables consumed by the pipeline. Both sources supply
// some or all of these; the mappings below absorb their naming and
// typing differences.
const (
	TableOrders              = "orders"
	TableOrderDetails        = "order_details"
	TableCustomers           = "customers"
	TableEmployees           = "employees"
	TableEmployeeTerritories = "employee_territories"
	TableTerritories         = "territories"
	TableRegion              = "region"
)

// Mappings holds the fixed cleaning contract per logical table.
// Aliases cover the variants seen across the two sources (e.g. the
// desktop database exports "Order ID", the RDBMS "OrderID").
var Mappings = map[string]Mapping{
	TableOrders: {
		Table: TableOrders,
		Columns: []Column{
			{To: "order_id", Kind: record.KindInteger},
			{To: "customer_id", Kind: record.KindString, From: []string{"customer_id", "customer"}},
			{To: "employee_id", Kind: record.KindInteger, From: []string{"employee_id", "employee"}},
			{To: "order_date", Kind: record.KindDate},
			{To: "shipped_date", Kind: record.KindDate},
		},
	},
	TableOrderDetails: {
		Table: TableOrderDetails,
		Columns: []Column{
			{To: "order_id", Kind: record.KindInteger},
			{To: "product_id", Kind: record.KindInteger, From: []string{"product_id", "product"}},
			{To: "unit_price", Kind: record.KindNumber},
			{To: "quantity", Kind: record.KindInteger},
			{To: "discount", Kind: record.KindNumber},
		},
	},
	TableCustomers: {
		Table: TableCustomers,
		Columns: []Column{
			{To: "customer_id", Kind: record.KindString, From: []string{"customer_id", "id"}},
			{To: "company_name", Kind: record.KindString, From: []string{"company_name", "company"}},
			{To: "city", Kind: record.KindString},
			{To: "region", Kind: record.KindString, From: []string{"region", "state_province"}},
			{To: "country", Kind: record.KindString, From: []string{"country", "country_region"}},
		},
	},
	TableEmployees: {
		Table: TableEmployees,
		Columns: []Column{
			{To: "employee_id", Kind: record.KindInteger, From: []string{"employee_id", "id"}},
			{To: "first_name", Kind: record.KindString},
			{To: "last_name", Kind: record.KindString},
			{To: "title", Kind: record.KindString, From: []string{"title", "job_title"}},
			{To: "city", Kind: record.KindString},
			{To: "country", Kind: record.KindString, From: []string{"country", "country_region"}},
		},
	},
	TableEmployeeTerritories: {
		Table: TableEmployeeTerritories,
		Columns: []Column{
			{To: "employee_id", Kind: record.KindInteger},
			{To: "territory_id", Kind: record.KindString},
		},
	},
	TableTerritories: {
		Table: TableTerritories,
		Columns: []Column{
			{To: "territory_id", Kind: record.KindString},
			{To: "territory_description", Kind: record.KindString},
			{To: "region_id", Kind: record.KindInteger},
		},
	},
	TableRegion: {
		Table: TableRegion,
		Columns: []Column{
			{To: "region_id", Kind: record.KindInteger},
			{To: "region_description", Kind: record.KindString},
		},
	},
}

// SourceTables lists the logical tables in a stable extraction order.
var SourceTables = []string{
	TableOrders,
	TableOrderDetails,
	TableCustomers,
	TableEmployees,
	TableEmployeeTerritories,
	TableTerritories,
	TableRegion,
}
