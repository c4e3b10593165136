package database

import (
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/movietools/jsonl2sqlite/logger"
)

func initSqliteDB(dbfile string) (*sqlx.DB, error) {
	if _, err := os.Stat(dbfile); os.IsNotExist(err) {
		if _, err := os.Create(dbfile); err != nil { // Create SQLite file
			return nil, errors.Wrap(err, "could not create database file")
		}
	}
	// foreign keys stay declarative: the no-orphans invariant is enforced by
	// flushing all tables of a batch in one transaction, and INSERT OR
	// REPLACE on movies must not trip over child rows of an earlier batch
	db, err := sqlx.Connect("sqlite3", "file:"+dbfile+"?_mutex=no&_cslike=0")
	if err != nil {
		return nil, errors.Wrap(err, "could not open database")
	}
	db.SetMaxIdleConns(15)
	db.SetMaxOpenConns(5)
	return db, nil
}

// loadPragmas trades durability for throughput. A crash mid-load is resolved
// by re-running the load from scratch, never by partial recovery.
var loadPragmas = []string{
	"PRAGMA journal_mode = WAL;",
	"PRAGMA synchronous = NORMAL;",
	"PRAGMA cache_size = -64000;",
	"PRAGMA temp_store = MEMORY;",
}

func applyLoadPragmas(db *sqlx.DB) {
	for _, pragma := range loadPragmas {
		if _, err := db.Exec(pragma); err != nil {
			logger.Log.Warnln("Failed to apply pragma", pragma, err)
		}
	}
}
