// Package pipeline sequences one warehouse build: extract both
// sources, transform to the dimensional model, load the warehouse
// outputs, and validate the result. Stages communicate through file
// boundaries (raw, staging, warehouse) so each can also run alone.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/warehouse-cli/internal/clean"
	"github.com/sells-group/warehouse-cli/internal/config"
	"github.com/sells-group/warehouse-cli/internal/conform"
	"github.com/sells-group/warehouse-cli/internal/dimension"
	"github.com/sells-group/warehouse-cli/internal/extract"
	"github.com/sells-group/warehouse-cli/internal/fact"
	"github.com/sells-group/warehouse-cli/internal/keymap"
	"github.com/sells-group/warehouse-cli/internal/quality"
	"github.com/sells-group/warehouse-cli/internal/record"
	"github.com/sells-group/warehouse-cli/internal/validate"
	"github.com/sells-group/warehouse-cli/internal/warehouse"
)

// Staging and warehouse artifact names.
const (
	StagingDate       = "cleaned_date.csv"
	StagingClients    = "cleaned_clients.csv"
	StagingEmployees  = "cleaned_employees.csv"
	StagingSales      = "cleaned_sales.csv"
	StagingUnresolved = "unresolved_rows.csv"
	QualityArtifact   = "quality_log.yaml"
	ReportArtifact    = "validation_report.yaml"
	StoreFile         = "warehouse.db"
	SchemaFile        = "schema.sql"
)

// keyColumns defines the natural key per logical table for conforming.
var keyColumns = map[string][]string{
	clean.TableOrders:              {"order_id"},
	clean.TableOrderDetails:        {"order_id", "product_id"},
	clean.TableCustomers:           {"customer_id"},
	clean.TableEmployees:           {"employee_id"},
	clean.TableEmployeeTerritories: {"employee_id", "territory_id"},
	clean.TableTerritories:         {"territory_id"},
	clean.TableRegion:              {"region_id"},
}

// Pipeline owns one run: its configuration, run id, and quality log.
// A fresh Pipeline per run keeps repeated in-process runs independent.
type Pipeline struct {
	cfg     *config.Config
	runID   string
	quality *quality.Log
}

// New creates a Pipeline for a single run.
func New(cfg *config.Config) *Pipeline {
	runID := uuid.NewString()
	return &Pipeline{
		cfg:     cfg,
		runID:   runID,
		quality: quality.NewLog(runID),
	}
}

// RunID returns the run identifier stamped on artifacts.
func (p *Pipeline) RunID() string { return p.runID }

// Quality exposes the run's quality log.
func (p *Pipeline) Quality() *quality.Log { return p.quality }

// Run executes the full pipeline. The returned report is non-nil
// whenever validation ran; the error covers fatal failures only.
func (p *Pipeline) Run(ctx context.Context) (*validate.Report, error) {
	log := zap.L().With(zap.String("component", "pipeline"), zap.String("run_id", p.runID))
	start := time.Now()

	if err := p.Extract(ctx); err != nil {
		return nil, err
	}
	if _, err := p.Transform(ctx); err != nil {
		return nil, err
	}
	if err := p.Load(ctx); err != nil {
		return nil, err
	}
	report, err := p.Validate(ctx)
	if err != nil {
		return nil, err
	}

	log.Info("pipeline complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("valid", report.Passed()),
	)
	return report, nil
}

// Extract pulls full snapshots of every table from both sources and
// persists them at the raw boundary. The two sources are independent
// and extracted concurrently; the transform remains single-threaded.
// An unreachable source is fatal; a desktop table missing from the
// workbook is not.
func (p *Pipeline) Extract(ctx context.Context) error {
	log := zap.L().With(zap.String("component", "pipeline.extract"))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		src, err := extract.NewRDBMSSource(gctx, p.cfg.RDBMS.DatabaseURL, clean.SourceTables)
		if err != nil {
			return err
		}
		defer src.Close()
		return p.extractSource(gctx, src, true)
	})
	g.Go(func() error {
		src, err := extract.NewWorkbookSource(p.cfg.Desktop.WorkbookPath)
		if err != nil {
			return err
		}
		defer src.Close()
		return p.extractSource(gctx, src, false)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("extraction complete", zap.String("raw_dir", p.cfg.Data.RawDir))
	return nil
}

// extractSource pulls every logical table one source offers. When
// required is false, tables absent from the source are skipped.
func (p *Pipeline) extractSource(ctx context.Context, src extract.Source, required bool) error {
	available := make(map[string]bool)
	for _, t := range src.Tables() {
		available[t] = true
	}

	for _, table := range clean.SourceTables {
		if !required && !available[table] {
			zap.L().Info("source table not present, skipping",
				zap.String("source", src.Name()), zap.String("table", table))
			continue
		}
		raw, err := src.Extract(ctx, table)
		if err != nil {
			return eris.Wrapf(err, "pipeline: extract %s from %s", table, src.Name())
		}
		if err := extract.WriteRaw(p.cfg.Data.RawDir, raw); err != nil {
			return err
		}
	}
	return nil
}

// Transform reads the raw boundary, cleans and conforms every logical
// table, builds the dimensions, then the fact table (strict phase
// barrier: the key map is fully populated before fact resolution), and
// writes the staging artifacts. Returns the built snapshot so a full
// in-process run can skip re-reading staging.
func (p *Pipeline) Transform(ctx context.Context) (*warehouse.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: transform cancelled")
	}
	log := zap.L().With(zap.String("component", "pipeline.transform"), zap.String("run_id", p.runID))

	conformer := conform.New(p.cfg.Conform.Authority, p.quality)
	conformed := make(map[string][]record.Clean, len(clean.SourceTables))
	for _, table := range clean.SourceTables {
		raws := p.readRawTable(table)
		cleaned, stats := clean.Apply(raws, clean.Mappings[table], p.quality)
		recs := conformer.Conform(table, keyColumns[table], cleaned)
		conformed[table] = recs
		log.Debug("table transformed",
			zap.String("table", table),
			zap.Int("raw", stats.Input),
			zap.Int("clean", stats.Kept),
			zap.Int("conformed", len(recs)),
		)
	}

	keys := keymap.New()

	first, last, err := p.dateRange(conformed[clean.TableOrders])
	if err != nil {
		return nil, err
	}
	dates, err := dimension.BuildDate(first, last, keys)
	if err != nil {
		return nil, err
	}
	clients, err := dimension.BuildClients(conformed[clean.TableCustomers], keys)
	if err != nil {
		return nil, err
	}
	territories := dimension.BuildTerritoryMapping(
		conformed[clean.TableEmployeeTerritories],
		conformed[clean.TableTerritories],
		conformed[clean.TableRegion],
	)
	employees, err := dimension.BuildEmployees(conformed[clean.TableEmployees], territories, keys)
	if err != nil {
		return nil, err
	}

	// Dimensions are complete; the key map is now the single source of
	// truth for fact resolution.
	facts, unresolved := fact.New(keys, p.quality).Build(
		conformed[clean.TableOrders],
		conformed[clean.TableOrderDetails],
	)

	snap := &warehouse.Snapshot{
		Date:      dates,
		Clients:   clients,
		Employees: employees,
		Facts:     facts,
	}
	if err := p.writeStaging(snap, unresolved); err != nil {
		return nil, err
	}

	log.Info("transform complete",
		zap.Int("dim_date", len(dates)),
		zap.Int("dim_client", len(clients)),
		zap.Int("dim_employee", len(employees)),
		zap.Int("fact_sales", len(facts)),
		zap.Int("unresolved", len(unresolved)),
	)
	return snap, nil
}

// readRawTable collects raw records for a logical table from whichever
// sources extracted it.
func (p *Pipeline) readRawTable(table string) []record.Raw {
	var out []record.Raw
	for _, source := range []string{extract.SourceRDBMS, extract.SourceDesktop} {
		if !extract.HasRaw(p.cfg.Data.RawDir, source, table) {
			continue
		}
		raw, err := extract.ReadRaw(p.cfg.Data.RawDir, source, table)
		if err != nil {
			// A corrupt raw file loses one source's copy, not the run.
			zap.L().Warn("skipping unreadable raw file",
				zap.String("source", source), zap.String("table", table), zap.Error(err))
			continue
		}
		out = append(out, raw.Records()...)
	}
	return out
}

// dateRange picks the generated date dimension span: the configured
// override when present, else the observed min/max order dates.
func (p *Pipeline) dateRange(orders []record.Clean) (time.Time, time.Time, error) {
	start, end, ok, err := p.cfg.Dates.Range()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if ok {
		return start, end, nil
	}
	first, last, found := dimension.DateRange(orders)
	if !found {
		return time.Time{}, time.Time{}, eris.New("pipeline: transaction source is empty, cannot derive date range")
	}
	return first, last, nil
}

// writeStaging persists the transform outputs and quality log.
func (p *Pipeline) writeStaging(snap *warehouse.Snapshot, unresolved []fact.Unresolved) error {
	dir := p.cfg.Data.StagingDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "pipeline: create staging dir %s", dir)
	}

	if err := warehouse.WriteCSV(filepath.Join(dir, StagingDate), snap.Date); err != nil {
		return err
	}
	if err := warehouse.WriteCSV(filepath.Join(dir, StagingClients), snap.Clients); err != nil {
		return err
	}
	if err := warehouse.WriteCSV(filepath.Join(dir, StagingEmployees), snap.Employees); err != nil {
		return err
	}
	if err := warehouse.WriteCSV(filepath.Join(dir, StagingSales), snap.Facts); err != nil {
		return err
	}
	if err := warehouse.WriteCSV(filepath.Join(dir, StagingUnresolved), unresolved); err != nil {
		return err
	}
	return p.quality.WriteYAML(filepath.Join(dir, QualityArtifact))
}

// Load reads the staging boundary and persists the warehouse: one CSV
// per table, the binary store, and the generated DDL script. Any
// persistence failure is fatal; the wrapped error names the table.
func (p *Pipeline) Load(ctx context.Context) error {
	log := zap.L().With(zap.String("component", "pipeline.load"))

	snap, err := p.readStaging()
	if err != nil {
		return err
	}

	dir := p.cfg.Data.WarehouseDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "pipeline: create warehouse dir %s", dir)
	}

	if err := warehouse.WriteCSV(filepath.Join(dir, warehouse.TableDimDate+".csv"), snap.Date); err != nil {
		return err
	}
	if err := warehouse.WriteCSV(filepath.Join(dir, warehouse.TableDimClient+".csv"), snap.Clients); err != nil {
		return err
	}
	if err := warehouse.WriteCSV(filepath.Join(dir, warehouse.TableDimEmployee+".csv"), snap.Employees); err != nil {
		return err
	}
	if err := warehouse.WriteCSV(filepath.Join(dir, warehouse.TableFactSales+".csv"), snap.Facts); err != nil {
		return err
	}

	store, err := warehouse.Open(filepath.Join(dir, StoreFile))
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Replace(ctx, snap); err != nil {
		return err
	}

	ddl := warehouse.DDL(warehouse.Tables)
	if err := os.WriteFile(filepath.Join(dir, SchemaFile), []byte(ddl), 0o644); err != nil {
		return eris.Wrap(err, "pipeline: write schema script")
	}

	log.Info("load complete",
		zap.String("warehouse_dir", dir),
		zap.Int("dim_date", len(snap.Date)),
		zap.Int("dim_client", len(snap.Clients)),
		zap.Int("dim_employee", len(snap.Employees)),
		zap.Int("fact_sales", len(snap.Facts)),
	)
	return nil
}

// readStaging loads the staging CSVs back into a snapshot.
func (p *Pipeline) readStaging() (*warehouse.Snapshot, error) {
	dir := p.cfg.Data.StagingDir
	snap := &warehouse.Snapshot{}
	if err := warehouse.ReadCSV(filepath.Join(dir, StagingDate), &snap.Date); err != nil {
		return nil, err
	}
	if err := warehouse.ReadCSV(filepath.Join(dir, StagingClients), &snap.Clients); err != nil {
		return nil, err
	}
	if err := warehouse.ReadCSV(filepath.Join(dir, StagingEmployees), &snap.Employees); err != nil {
		return nil, err
	}
	if err := warehouse.ReadCSV(filepath.Join(dir, StagingSales), &snap.Facts); err != nil {
		return nil, err
	}
	return snap, nil
}

// Validate reads the finished warehouse from the binary store, runs
// the check sequence, and persists the report. Check failures are
// reported in the returned Report, not as an error.
func (p *Pipeline) Validate(ctx context.Context) (*validate.Report, error) {
	store, err := warehouse.Open(filepath.Join(p.cfg.Data.WarehouseDir, StoreFile))
	if err != nil {
		return nil, err
	}
	defer store.Close()

	snap, err := store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	validator := validate.New(validate.Thresholds{MaxNullRate: p.cfg.Validate.MaxNullRate})
	report := validator.Run(p.runID, snap)

	if err := report.WriteYAML(filepath.Join(p.cfg.Data.WarehouseDir, ReportArtifact)); err != nil {
		return nil, err
	}
	return report, nil
}
