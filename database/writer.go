package database

import (
	"database/sql"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/movietools/jsonl2sqlite/logger"
)

// sqlParamBatch keeps every generated multi-row insert under the SQLite
// bound-parameter limit.
const sqlParamBatch = 900

// Writer persists drained batches. Each Flush call writes every table of one
// batch inside a single transaction, so an interrupted run never leaves child
// rows without their movie row.
type Writer struct {
	db           *sqlx.DB
	dbfile       string
	filtered     bool
	moviesInsert string
	moviesRow    string
	moviesWidth  int
	childInsert  map[string]string
	childRow     map[string]string
	childWidth   map[string]int
}

func NewWriter(dbfile string, filtered bool) (*Writer, error) {
	db, err := initSqliteDB(dbfile)
	if err != nil {
		return nil, err
	}
	applyLoadPragmas(db)

	w := &Writer{
		db:          db,
		dbfile:      dbfile,
		filtered:    filtered,
		childInsert: make(map[string]string, len(MovieChildTables)),
		childRow:    make(map[string]string, len(MovieChildTables)),
		childWidth:  make(map[string]int, len(MovieChildTables)),
	}

	cols := MovieColumns(filtered)
	names := make([]string, 0, len(cols))
	for idx := range cols {
		names = append(names, cols[idx].Name)
	}
	// last record with a given id wins
	w.moviesInsert, w.moviesRow = insertSQL(MoviesTable, names, true)
	w.moviesWidth = len(names)

	for idx := range MovieChildTables {
		child := &MovieChildTables[idx]
		names := make([]string, 0, len(child.Columns)+1)
		names = append(names, "movie_id")
		for idxcol := range child.Columns {
			names = append(names, child.Columns[idxcol].Name)
		}
		w.childInsert[child.Name], w.childRow[child.Name] = insertSQL(child.Name, names, false)
		w.childWidth[child.Name] = len(names)
	}
	return w, nil
}

// CreateSchema drops and recreates the movies table and every child table.
// Re-running the loader against an existing file rebuilds the dataset.
func (w *Writer) CreateSchema() error {
	stmts := make([]string, 0, 2+2*len(MovieChildTables))
	for idx := range MovieChildTables {
		stmts = append(stmts, "DROP TABLE IF EXISTS "+MovieChildTables[idx].Name)
	}
	stmts = append(stmts, "DROP TABLE IF EXISTS "+MoviesTable, createMoviesSQL(w.filtered))
	for idx := range MovieChildTables {
		stmts = append(stmts, MovieChildTables[idx].createSQL())
	}
	for _, stmt := range stmts {
		if _, err := w.db.Exec(stmt); err != nil {
			return errors.Wrapf(err, "could not create schema (%s)", stmt)
		}
	}
	return nil
}

// Flush writes one drained batch. All tables commit together or not at all.
func (w *Writer) Flush(movies [][]any, children map[string][][]any) error {
	if len(movies) == 0 {
		return nil
	}
	tx, err := w.db.Begin()
	if err != nil {
		return errors.Wrap(err, "could not begin batch transaction")
	}
	if err := insertRows(tx, w.moviesInsert, w.moviesRow, w.moviesWidth, movies); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "could not write movies batch")
	}
	for idx := range MovieChildTables {
		name := MovieChildTables[idx].Name
		rows := children[name]
		if len(rows) == 0 {
			continue
		}
		if err := insertRows(tx, w.childInsert[name], w.childRow[name], w.childWidth[name], rows); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "could not write %s batch", name)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "could not commit batch")
	}
	return nil
}

// insertRows executes multi-row VALUES inserts, chunked below the parameter
// limit.
func insertRows(tx *sql.Tx, insert string, rowTemplate string, width int, rows [][]any) error {
	maxRows := sqlParamBatch / width
	if maxRows < 1 {
		maxRows = 1
	}
	var build strings.Builder
	args := make([]any, 0, maxRows*width)
	for idx := 0; idx < len(rows); idx += maxRows {
		end := idx + maxRows
		if end > len(rows) {
			end = len(rows)
		}
		build.Reset()
		build.WriteString(insert)
		args = args[:0]
		for idxrow, row := range rows[idx:end] {
			if idxrow > 0 {
				build.WriteString(",")
			}
			build.WriteString(rowTemplate)
			args = append(args, row...)
		}
		if _, err := tx.Exec(build.String(), args...); err != nil {
			return err
		}
	}
	return nil
}

// LoadStats holds the per-table row counts gathered at the end of a run.
type LoadStats struct {
	TableRows      map[string]int
	DatabaseSizeMB float64
}

// Finalize applies post-load optimizations, verifies integrity and logs the
// table counts. The connection stays open until Close.
func (w *Writer) Finalize() error {
	optimizations := []string{
		"ANALYZE;",
		"PRAGMA optimize;",
	}
	for _, opt := range optimizations {
		if _, err := w.db.Exec(opt); err != nil {
			logger.Log.Warnln("Failed to apply optimization", opt, err)
		}
	}

	var check string
	if err := w.db.QueryRow("PRAGMA quick_check").Scan(&check); err != nil {
		return errors.Wrap(err, "integrity check failed")
	}
	if check != "ok" {
		return errors.New("integrity check failed: " + check)
	}

	stats, err := w.GatherLoadStats()
	if err != nil {
		logger.Log.Warnln("Failed to gather load statistics", err)
		return nil
	}
	logger.Log.Infoln("Database finalized:", stats.TableRows[MoviesTable], "movies,",
		stats.DatabaseSizeMB, "MB")
	for idx := range MovieChildTables {
		logger.Log.Debugln("Table", MovieChildTables[idx].Name, "rows:", stats.TableRows[MovieChildTables[idx].Name])
	}
	return nil
}

func (w *Writer) GatherLoadStats() (*LoadStats, error) {
	stats := &LoadStats{TableRows: make(map[string]int, 1+len(MovieChildTables))}
	counter, err := w.CountRows(MoviesTable)
	if err != nil {
		return nil, err
	}
	stats.TableRows[MoviesTable] = counter
	for idx := range MovieChildTables {
		counter, err := w.CountRows(MovieChildTables[idx].Name)
		if err != nil {
			return nil, err
		}
		stats.TableRows[MovieChildTables[idx].Name] = counter
	}
	if stat, err := os.Stat(w.dbfile); err == nil {
		stats.DatabaseSizeMB = float64(stat.Size()) / 1024 / 1024
	}
	return stats, nil
}

func (w *Writer) CountRows(table string) (int, error) {
	var counter int
	if err := w.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&counter); err != nil {
		return 0, errors.Wrapf(err, "could not count rows of %s", table)
	}
	return counter, nil
}

func (w *Writer) Close() error {
	return w.db.Close()
}
