package warehouse

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Store is the binary warehouse database backed by modernc.org/sqlite.
// The validator reads the finished warehouse back through it.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the warehouse database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "warehouse: open store")
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "warehouse: set journal mode")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Replace rebuilds the warehouse from the snapshot: every table is
// dropped and re-created, then loaded. Full-snapshot semantics - no
// incremental merge.
func (s *Store) Replace(ctx context.Context, snap *Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "warehouse: begin replace")
	}
	defer tx.Rollback()

	for _, t := range Tables {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+t.Name); err != nil {
			return eris.Wrapf(err, "warehouse: drop %s", t.Name)
		}
		if _, err := tx.ExecContext(ctx, createSQL(t)); err != nil {
			return eris.Wrapf(err, "warehouse: create %s", t.Name)
		}
	}

	if err := insertDates(ctx, tx, snap.Date); err != nil {
		return err
	}
	if err := insertClients(ctx, tx, snap.Clients); err != nil {
		return err
	}
	if err := insertEmployees(ctx, tx, snap.Employees); err != nil {
		return err
	}
	if err := insertFacts(ctx, tx, snap.Facts); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "warehouse: commit replace")
	}
	return nil
}

// Snapshot reads the full warehouse back. Tables absent from the store
// are listed in Missing rather than failing the read, so the validator
// can report the existence check itself.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	for _, t := range Tables {
		exists, err := s.tableExists(ctx, t.Name)
		if err != nil {
			return nil, err
		}
		if !exists {
			snap.Missing = append(snap.Missing, t.Name)
			continue
		}

		switch t.Name {
		case TableDimDate:
			snap.Date, err = s.readDates(ctx)
		case TableDimClient:
			snap.Clients, err = s.readClients(ctx)
		case TableDimEmployee:
			snap.Employees, err = s.readEmployees(ctx)
		case TableFactSales:
			snap.Facts, err = s.readFacts(ctx)
		}
		if err != nil {
			return nil, err
		}
	}
	return snap, nil
}

func (s *Store) tableExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&n)
	if err != nil {
		return false, eris.Wrapf(err, "warehouse: check table %s", name)
	}
	return n > 0, nil
}

// createSQL renders the schema DDL for one table. SQLite accepts the
// portable types used in the generated script directly.
func createSQL(t Table) string {
	var cols []string
	for _, c := range t.Columns {
		col := c.Name + " " + c.Type
		if c.PrimaryKey {
			col += " PRIMARY KEY"
		}
		cols = append(cols, col)
	}
	return "CREATE TABLE " + t.Name + " (" + strings.Join(cols, ", ") + ")"
}

func insertDates(ctx context.Context, tx *sql.Tx, rows []DateRow) error {
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO DimDate (sk_date, full_date, year, month, month_name, quarter) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return eris.Wrap(err, "warehouse: prepare DimDate insert")
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.SKDate, r.FullDate, r.Year, r.Month, r.MonthName, r.Quarter); err != nil {
			return eris.Wrapf(err, "warehouse: insert DimDate sk %d", r.SKDate)
		}
	}
	return nil
}

func insertClients(ctx context.Context, tx *sql.Tx, rows []ClientRow) error {
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO DimClient (sk_client, bk_client_id, company_name, city, region, country) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return eris.Wrap(err, "warehouse: prepare DimClient insert")
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.SKClient, r.ClientID, r.CompanyName,
			nullable(r.City), nullable(r.Region), nullable(r.Country)); err != nil {
			return eris.Wrapf(err, "warehouse: insert DimClient sk %d", r.SKClient)
		}
	}
	return nil
}

func insertEmployees(ctx context.Context, tx *sql.Tx, rows []EmployeeRow) error {
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO DimEmployee (sk_employee, bk_employee_id, employee_name, title, city, country, territories, sales_region) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return eris.Wrap(err, "warehouse: prepare DimEmployee insert")
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.SKEmployee, r.EmployeeID, r.Name,
			nullable(r.Title), nullable(r.City), nullable(r.Country),
			nullable(r.Territories), nullable(r.SalesRegion)); err != nil {
			return eris.Wrapf(err, "warehouse: insert DimEmployee sk %d", r.SKEmployee)
		}
	}
	return nil
}

func insertFacts(ctx context.Context, tx *sql.Tx, rows []FactRow) error {
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO FactSales (fact_id, bk_order_id, product_id, sk_date, sk_client, sk_employee, quantity, unit_price, discount, total_amount, delivery_status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return eris.Wrap(err, "warehouse: prepare FactSales insert")
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.FactID, r.OrderID, r.ProductID,
			r.SKDate, r.SKClient, r.SKEmployee,
			r.Quantity, r.UnitPrice, r.Discount, r.TotalAmount, r.DeliveryStatus); err != nil {
			return eris.Wrapf(err, "warehouse: insert FactSales fact %d", r.FactID)
		}
	}
	return nil
}

func (s *Store) readDates(ctx context.Context) ([]DateRow, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT sk_date, full_date, year, month, month_name, quarter FROM DimDate ORDER BY sk_date")
	if err != nil {
		return nil, eris.Wrap(err, "warehouse: read DimDate")
	}
	defer rows.Close()

	var out []DateRow
	for rows.Next() {
		var r DateRow
		if err := rows.Scan(&r.SKDate, &r.FullDate, &r.Year, &r.Month, &r.MonthName, &r.Quarter); err != nil {
			return nil, eris.Wrap(err, "warehouse: scan DimDate")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "warehouse: iterate DimDate")
}

func (s *Store) readClients(ctx context.Context) ([]ClientRow, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT sk_client, bk_client_id, company_name, city, region, country FROM DimClient ORDER BY sk_client")
	if err != nil {
		return nil, eris.Wrap(err, "warehouse: read DimClient")
	}
	defer rows.Close()

	var out []ClientRow
	for rows.Next() {
		var r ClientRow
		var city, region, country sql.NullString
		if err := rows.Scan(&r.SKClient, &r.ClientID, &r.CompanyName, &city, &region, &country); err != nil {
			return nil, eris.Wrap(err, "warehouse: scan DimClient")
		}
		r.City, r.Region, r.Country = city.String, region.String, country.String
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "warehouse: iterate DimClient")
}

func (s *Store) readEmployees(ctx context.Context) ([]EmployeeRow, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT sk_employee, bk_employee_id, employee_name, title, city, country, territories, sales_region FROM DimEmployee ORDER BY sk_employee")
	if err != nil {
		return nil, eris.Wrap(err, "warehouse: read DimEmployee")
	}
	defer rows.Close()

	var out []EmployeeRow
	for rows.Next() {
		var r EmployeeRow
		var title, city, country, territories, salesRegion sql.NullString
		if err := rows.Scan(&r.SKEmployee, &r.EmployeeID, &r.Name, &title, &city, &country, &territories, &salesRegion); err != nil {
			return nil, eris.Wrap(err, "warehouse: scan DimEmployee")
		}
		r.Title, r.City, r.Country = title.String, city.String, country.String
		r.Territories, r.SalesRegion = territories.String, salesRegion.String
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "warehouse: iterate DimEmployee")
}

func (s *Store) readFacts(ctx context.Context) ([]FactRow, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT fact_id, bk_order_id, product_id, sk_date, sk_client, sk_employee, quantity, unit_price, discount, total_amount, delivery_status FROM FactSales ORDER BY fact_id")
	if err != nil {
		return nil, eris.Wrap(err, "warehouse: read FactSales")
	}
	defer rows.Close()

	var out []FactRow
	for rows.Next() {
		var r FactRow
		if err := rows.Scan(&r.FactID, &r.OrderID, &r.ProductID, &r.SKDate, &r.SKClient, &r.SKEmployee,
			&r.Quantity, &r.UnitPrice, &r.Discount, &r.TotalAmount, &r.DeliveryStatus); err != nil {
			return nil, eris.Wrap(err, "warehouse: scan FactSales")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "warehouse: iterate FactSales")
}

// nullable maps the empty string to SQL NULL so null-rate checks see
// true nulls in the binary store.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
