// Package warehouse defines the fixed star schema and persists it:
// row-oriented CSV, the binary SQLite warehouse database, and the
// generated DDL script. Outputs are full snapshots, replaced each run.
package warehouse

// Warehouse table names.
const (
	TableDimDate     = "DimDate"
	TableDimClient   = "DimClient"
	TableDimEmployee = "DimEmployee"
	TableFactSales   = "FactSales"
)

// DateRow is one calendar day in the generated date dimension.
type DateRow struct {
	SKDate    int64  `csv:"sk_date"`
	FullDate  string `csv:"full_date"` // YYYY-MM-DD, both natural and lookup key
	Year      int    `csv:"year"`
	Month     int    `csv:"month"`
	MonthName string `csv:"month_name"`
	Quarter   int    `csv:"quarter"`
}

// ClientRow is one conformed client with geography enrichment.
// Empty descriptive attributes denote null.
type ClientRow struct {
	SKClient    int64  `csv:"sk_client"`
	ClientID    string `csv:"bk_client_id"`
	CompanyName string `csv:"company_name"`
	City        string `csv:"city"`
	Region      string `csv:"region"`
	Country     string `csv:"country"`
}

// EmployeeRow is one conformed employee with territory enrichment.
type EmployeeRow struct {
	SKEmployee  int64  `csv:"sk_employee"`
	EmployeeID  int64  `csv:"bk_employee_id"`
	Name        string `csv:"employee_name"`
	Title       string `csv:"title"`
	City        string `csv:"city"`
	Country     string `csv:"country"`
	Territories string `csv:"territories"`
	SalesRegion string `csv:"sales_region"`
}

// FactRow is one order line with its measures and resolved foreign
// keys into the three dimensions.
type FactRow struct {
	FactID         int64   `csv:"fact_id"`
	OrderID        int64   `csv:"bk_order_id"`
	ProductID      int64   `csv:"product_id"`
	SKDate         int64   `csv:"sk_date"`
	SKClient       int64   `csv:"sk_client"`
	SKEmployee     int64   `csv:"sk_employee"`
	Quantity       int64   `csv:"quantity"`
	UnitPrice      float64 `csv:"unit_price"`
	Discount       float64 `csv:"discount"`
	TotalAmount    float64 `csv:"total_amount"`
	DeliveryStatus string  `csv:"delivery_status"`
}

// Column describes one warehouse column for schema generation.
type Column struct {
	Name       string
	Type       string
	PrimaryKey bool
}

// Table describes one warehouse table for schema generation.
type Table struct {
	Name    string
	Columns []Column
}

// Tables is the fixed target schema in load order.
var Tables = []Table{
	{
		Name: TableDimDate,
		Columns: []Column{
			{Name: "sk_date", Type: "INT", PrimaryKey: true},
			{Name: "full_date", Type: "DATE"},
			{Name: "year", Type: "INT"},
			{Name: "month", Type: "INT"},
			{Name: "month_name", Type: "VARCHAR(255)"},
			{Name: "quarter", Type: "INT"},
		},
	},
	{
		Name: TableDimClient,
		Columns: []Column{
			{Name: "sk_client", Type: "INT", PrimaryKey: true},
			{Name: "bk_client_id", Type: "VARCHAR(255)"},
			{Name: "company_name", Type: "VARCHAR(255)"},
			{Name: "city", Type: "VARCHAR(255)"},
			{Name: "region", Type: "VARCHAR(255)"},
			{Name: "country", Type: "VARCHAR(255)"},
		},
	},
	{
		Name: TableDimEmployee,
		Columns: []Column{
			{Name: "sk_employee", Type: "INT", PrimaryKey: true},
			{Name: "bk_employee_id", Type: "INT"},
			{Name: "employee_name", Type: "VARCHAR(255)"},
			{Name: "title", Type: "VARCHAR(255)"},
			{Name: "city", Type: "VARCHAR(255)"},
			{Name: "country", Type: "VARCHAR(255)"},
			{Name: "territories", Type: "VARCHAR(255)"},
			{Name: "sales_region", Type: "VARCHAR(255)"},
		},
	},
	{
		Name: TableFactSales,
		Columns: []Column{
			{Name: "fact_id", Type: "INT", PrimaryKey: true},
			{Name: "bk_order_id", Type: "INT"},
			{Name: "product_id", Type: "INT"},
			{Name: "sk_date", Type: "INT"},
			{Name: "sk_client", Type: "INT"},
			{Name: "sk_employee", Type: "INT"},
			{Name: "quantity", Type: "INT"},
			{Name: "unit_price", Type: "DECIMAL(10,2)"},
			{Name: "discount", Type: "DECIMAL(10,2)"},
			{Name: "total_amount", Type: "DECIMAL(10,2)"},
			{Name: "delivery_status", Type: "VARCHAR(255)"},
		},
	},
}

// Snapshot is a fully loaded warehouse, as read back from the binary
// store for validation. Missing lists tables absent from the store.
type Snapshot struct {
	Date      []DateRow
	Clients   []ClientRow
	Employees []EmployeeRow
	Facts     []FactRow
	Missing   []string
}

// IsMissing reports whether a table was absent from the store.
func (s *Snapshot) IsMissing(name string) bool {
	for _, m := range s.Missing {
		if m == name {
			return true
		}
	}
	return false
}
