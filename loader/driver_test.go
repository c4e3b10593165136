package loader

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
)

func writeInput(t *testing.T, lines []string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "movies.jsonl")
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatalf("could not write input: %v", err)
	}
	return name
}

func openResult(t *testing.T, dbfile string) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", "file:"+dbfile)
	if err != nil {
		t.Fatalf("could not open result database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var counter int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&counter); err != nil {
		t.Fatalf("could not count %s: %v", table, err)
	}
	return counter
}

const specLine = `{"id": 1, "title": "A", "adult": false, "poster_path": "", "overview": "x", "genres":[{"id":5,"name":"Comedy"}]}`

func TestTransferFull(t *testing.T) {
	input := writeInput(t, []string{specLine})
	dbfile := filepath.Join(t.TempDir(), "movies.db")

	sum, err := Transfer(Options{InputFile: input, DBFile: dbfile})
	if err != nil {
		t.Fatalf("expected transfer to succeed, got %v", err)
	}
	if sum.RowsRead != 1 || sum.RowsStored != 1 || sum.RowsSkipped != 0 {
		t.Errorf("expected 1 read / 1 stored / 0 skipped, got %d/%d/%d",
			sum.RowsRead, sum.RowsStored, sum.RowsSkipped)
	}

	db := openResult(t, dbfile)
	var (
		title  string
		adult  int
		poster sql.NullString
	)
	if err := db.QueryRow("SELECT title, adult, poster_path FROM movies WHERE id = 1").Scan(&title, &adult, &poster); err != nil {
		t.Fatalf("could not read movie row: %v", err)
	}
	if title != "A" {
		t.Errorf("expected title A, got %s", title)
	}
	if adult != 0 {
		t.Errorf("expected adult 0, got %d", adult)
	}
	if poster.Valid {
		t.Errorf("expected poster_path NULL, got %s", poster.String)
	}

	var movieID, genreID int
	var genreName string
	if err := db.QueryRow("SELECT movie_id, genre_id, genre_name FROM movie_genres").Scan(&movieID, &genreID, &genreName); err != nil {
		t.Fatalf("could not read genre row: %v", err)
	}
	if movieID != 1 || genreID != 5 || genreName != "Comedy" {
		t.Errorf("expected genre row (1, 5, Comedy), got (%d, %d, %s)", movieID, genreID, genreName)
	}
}

func TestTransferFiltered(t *testing.T) {
	t.Run("empty poster is skipped", func(t *testing.T) {
		input := writeInput(t, []string{specLine})
		dbfile := filepath.Join(t.TempDir(), "movies.db")

		sum, err := Transfer(Options{InputFile: input, DBFile: dbfile, Filtered: true})
		if err != nil {
			t.Fatalf("expected transfer to succeed, got %v", err)
		}
		if sum.RowsStored != 0 {
			t.Errorf("expected 0 stored, got %d", sum.RowsStored)
		}
		if sum.RowsSkipped != 1 {
			t.Errorf("expected skip counter 1, got %d", sum.RowsSkipped)
		}
		db := openResult(t, dbfile)
		if counter := countRows(t, db, "movies"); counter != 0 {
			t.Errorf("expected 0 movies, got %d", counter)
		}
		if counter := countRows(t, db, "movie_genres"); counter != 0 {
			t.Errorf("expected 0 genre rows, got %d", counter)
		}
	})

	t.Run("admitted records satisfy the predicate", func(t *testing.T) {
		input := writeInput(t, []string{
			`{"id": 1, "title": "A", "adult": false, "poster_path": "/a.jpg", "overview": "x"}`,
			`{"id": 2, "title": "B", "adult": true, "poster_path": "/b.jpg", "overview": "x"}`,
			`{"id": 3, "title": "C", "adult": false, "poster_path": "/c.jpg", "overview": ""}`,
		})
		dbfile := filepath.Join(t.TempDir(), "movies.db")

		sum, err := Transfer(Options{InputFile: input, DBFile: dbfile, Filtered: true})
		if err != nil {
			t.Fatalf("expected transfer to succeed, got %v", err)
		}
		if sum.RowsStored != 1 || sum.RowsSkipped != 2 {
			t.Errorf("expected 1 stored / 2 skipped, got %d/%d", sum.RowsStored, sum.RowsSkipped)
		}
		db := openResult(t, dbfile)
		if counter := countRows(t, db, "movies"); counter != 1 {
			t.Errorf("expected 1 movie, got %d", counter)
		}
	})
}

func TestTransferStream(t *testing.T) {
	t.Run("malformed lines never abort the run", func(t *testing.T) {
		input := writeInput(t, []string{
			`{"id": 1, "title": "A"}`,
			`not json at all`,
			``,
			`{"title": "no id"}`,
			`{"id": 2, "title": "B"}`,
			`{"id": 3, "title": "C"}`,
			`{"id": 4, "title": "D"}`,
			`{"id": 5, "title": "E"}`,
		})
		dbfile := filepath.Join(t.TempDir(), "movies.db")

		sum, err := Transfer(Options{InputFile: input, DBFile: dbfile, BatchSize: 2})
		if err != nil {
			t.Fatalf("expected transfer to succeed, got %v", err)
		}
		// blank line does not count as read
		if sum.RowsRead != 7 {
			t.Errorf("expected 7 rows read, got %d", sum.RowsRead)
		}
		if sum.RowsStored != 5 {
			t.Errorf("expected 5 rows stored, got %d", sum.RowsStored)
		}
		if sum.RowsMalformed != 2 {
			t.Errorf("expected 2 malformed rows, got %d", sum.RowsMalformed)
		}
		db := openResult(t, dbfile)
		if counter := countRows(t, db, "movies"); counter != sum.RowsRead-sum.RowsSkipped-sum.RowsMalformed {
			t.Errorf("expected %d movies, got %d", sum.RowsRead-sum.RowsSkipped-sum.RowsMalformed, counter)
		}
	})

	t.Run("re-run produces identical counts", func(t *testing.T) {
		input := writeInput(t, []string{
			`{"id": 1, "title": "A", "genres":[{"id":5,"name":"Comedy"}]}`,
			`{"id": 2, "title": "B"}`,
		})
		dir := t.TempDir()

		first, err := Transfer(Options{InputFile: input, DBFile: filepath.Join(dir, "one.db")})
		if err != nil {
			t.Fatalf("expected first run to succeed, got %v", err)
		}
		second, err := Transfer(Options{InputFile: input, DBFile: filepath.Join(dir, "two.db")})
		if err != nil {
			t.Fatalf("expected second run to succeed, got %v", err)
		}
		if first.RowsStored != second.RowsStored || first.RowsRead != second.RowsRead {
			t.Errorf("expected identical summaries, got %d/%d vs %d/%d",
				first.RowsRead, first.RowsStored, second.RowsRead, second.RowsStored)
		}
		dbOne := openResult(t, filepath.Join(dir, "one.db"))
		dbTwo := openResult(t, filepath.Join(dir, "two.db"))
		for _, table := range []string{"movies", "movie_genres"} {
			if countRows(t, dbOne, table) != countRows(t, dbTwo, table) {
				t.Errorf("expected identical %s counts", table)
			}
		}
	})

	t.Run("re-run over the same target rebuilds it", func(t *testing.T) {
		input := writeInput(t, []string{`{"id": 1, "title": "A"}`})
		dbfile := filepath.Join(t.TempDir(), "movies.db")
		for i := 0; i < 2; i++ {
			if _, err := Transfer(Options{InputFile: input, DBFile: dbfile}); err != nil {
				t.Fatalf("run %d failed: %v", i+1, err)
			}
		}
		db := openResult(t, dbfile)
		if counter := countRows(t, db, "movies"); counter != 1 {
			t.Errorf("expected 1 movie after re-run, got %d", counter)
		}
	})

	t.Run("missing input file fails", func(t *testing.T) {
		_, err := Transfer(Options{InputFile: filepath.Join(t.TempDir(), "missing.jsonl"), DBFile: filepath.Join(t.TempDir(), "movies.db")})
		if err == nil {
			t.Errorf("expected error for missing input")
		}
	})
}
