package stage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ldp/internal/dbexec"
	"ldp/internal/extract"
	"ldp/internal/jsonstream"
)

// defaultRecordsKey is the top-level object key the scanner looks for
// when none is configured.
const defaultRecordsKey = "records"

// TableStager orchestrates one table's full pass 1 -> DDL -> pass 2 ->
// index -> publish protocol, inside a single transaction.
type TableStager struct {
	DB         *dbexec.DB
	Pages      extract.PageReader
	Log        *zap.Logger
	RecordsKey string
	Roles      []string
	// LoadFromDirectory, when true, additionally folds in
	// "<table>_test.json" during both passes if present.
	LoadFromDirectory bool
}

func (s *TableStager) recordsKey() string {
	if s.RecordsKey != "" {
		return s.RecordsKey
	}
	return defaultRecordsKey
}

// Run executes the full protocol for table. On success the published
// table named table.TableName holds the freshly loaded data and no
// loading-named table remains. On failure the transaction is rolled back
// and a *StageError is returned describing which phase failed.
func (s *TableStager) Run(ctx context.Context, table *TableSpec) error {
	if table.Skip {
		s.Log.Info("skipping table with no extracted data", zap.String("table", table.TableName))
		return nil
	}

	pageCount, err := s.Pages.PageCount(table.TableName)
	if err != nil {
		return newStageError(table.TableName, "page-count", KindExtraction, err)
	}

	counts := map[string]*Counts{}
	if err := s.forEachPage(table.TableName, pageCount, func(_ int, rec jsonstream.Value) error {
		ObserveRecord(counts, rec)
		return nil
	}); err != nil {
		return newStageError(table.TableName, "pass1-analyze", KindExtraction, err)
	}
	table.Columns = ColumnSpecsFromCounts(counts)

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return newStageError(table.TableName, "begin", KindExecution, err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback(ctx)
		}
	}()

	if err := s.createLoadingTable(ctx, tx, table); err != nil {
		return newStageError(table.TableName, "create-loading-table", KindExecution, err)
	}

	batcher := NewInsertBatcher(ctx, tx, table.LoadingName())
	loadErr := s.forEachPage(table.TableName, pageCount, func(_ int, rec jsonstream.Value) error {
		canonical := jsonstream.Pretty(rec)
		compact := jsonstream.Compact(rec)
		return EmitTuple(s.Log, s.DB.Flavor(), table, rec, canonical, compact, batcher)
	})
	if loadErr != nil {
		return newStageError(table.TableName, "pass2-load", KindExecution, loadErr)
	}
	if err := batcher.Flush(); err != nil {
		return newStageError(table.TableName, "pass2-flush", KindExecution, err)
	}

	if err := s.indexLoadingTable(ctx, tx, table); err != nil {
		return newStageError(table.TableName, "index", KindExecution, err)
	}

	if err := s.publish(ctx, tx, table); err != nil {
		return newStageError(table.TableName, "publish", KindExecution, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return newStageError(table.TableName, "commit", KindExecution, err)
	}
	committed = true
	return nil
}

// forEachPage streams pages 0..pageCount-1 (and the directory-mode test
// page, if configured and present) through the scanner in order.
func (s *TableStager) forEachPage(table string, pageCount int, handler jsonstream.Handler) error {
	index := 0
	for page := 0; page < pageCount; page++ {
		f, err := s.Pages.OpenPage(table, page)
		if err != nil {
			return err
		}
		err = jsonstream.ScanPage(f, s.recordsKey(), func(_ int, rec jsonstream.Value) error {
			err := handler(index, rec)
			index++
			return err
		})
		closeErr := f.Close()
		if err != nil {
			return fmt.Errorf("page %d: %w", page, err)
		}
		if closeErr != nil {
			return fmt.Errorf("page %d: close: %w", page, closeErr)
		}
	}

	if s.LoadFromDirectory {
		f, ok, err := s.Pages.OpenTestPage(table)
		if err != nil {
			return err
		}
		if ok {
			err = jsonstream.ScanPage(f, s.recordsKey(), func(_ int, rec jsonstream.Value) error {
				err := handler(index, rec)
				index++
				return err
			})
			closeErr := f.Close()
			if err != nil {
				return fmt.Errorf("test page: %w", err)
			}
			if closeErr != nil {
				return fmt.Errorf("test page: close: %w", closeErr)
			}
		}
	}
	return nil
}

func (s *TableStager) createLoadingTable(ctx context.Context, tx *dbexec.Tx, table *TableSpec) error {
	f := s.DB.Flavor()
	loading := f.QuoteIdentifier(table.LoadingName())

	ddl := "CREATE TABLE " + loading + " (\n  id VARCHAR(36) NOT NULL"
	for _, col := range table.Columns[1:] {
		ddl += fmt.Sprintf(",\n  %s %s", f.QuoteIdentifier(col.ColumnName), f.ColumnTypeSQL(col.ColumnType))
	}
	ddl += fmt.Sprintf(",\n  data %s", f.JSONColumnType())
	ddl += ",\n  tenant_id SMALLINT NOT NULL\n)" + f.TableOptions() + ";"

	if err := tx.Exec(ctx, ddl); err != nil {
		return err
	}

	if table.ModuleName != "mod-agreements" {
		comment := fmt.Sprintf("COMMENT ON TABLE %s IS %s;", loading,
			f.QuoteString(fmt.Sprintf("module=%s source=%s", table.ModuleName, table.SourcePath)))
		if err := tx.Exec(ctx, comment); err != nil {
			return err
		}
	}

	for _, role := range s.Roles {
		grant := fmt.Sprintf("GRANT SELECT ON %s TO %s;", loading, f.QuoteIdentifier(role))
		if err := tx.Exec(ctx, grant); err != nil {
			return err
		}
	}
	return nil
}

func (s *TableStager) indexLoadingTable(ctx context.Context, tx *dbexec.Tx, table *TableSpec) error {
	f := s.DB.Flavor()
	loading := f.QuoteIdentifier(table.LoadingName())

	if err := tx.Exec(ctx, fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (id);", loading)); err != nil {
		return err
	}

	if !f.SupportsSecondaryIndex() {
		return nil
	}
	for _, col := range table.Columns[1:] {
		// Unnamed, so the server picks a free name: indexes created by an
		// earlier run keep their names after the rename to the published table.
		stmt := fmt.Sprintf("CREATE INDEX ON %s (%s);", loading, f.QuoteIdentifier(col.ColumnName))
		if err := tx.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *TableStager) publish(ctx context.Context, tx *dbexec.Tx, table *TableSpec) error {
	f := s.DB.Flavor()
	for _, stmt := range f.PublishStatements(table.LoadingName(), table.TableName) {
		if err := tx.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	for _, role := range s.Roles {
		stmt := fmt.Sprintf("GRANT SELECT ON ALL TABLES IN SCHEMA public TO %s;", f.QuoteIdentifier(role))
		if err := tx.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

