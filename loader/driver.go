package loader

import (
	"bufio"
	"bytes"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/movietools/jsonl2sqlite/config"
	"github.com/movietools/jsonl2sqlite/database"
	"github.com/movietools/jsonl2sqlite/logger"
)

// maxLineBytes bounds a single input line. Video-heavy records run long but
// nowhere near this.
const maxLineBytes = 16 * 1024 * 1024

type Options struct {
	InputFile string
	DBFile    string
	Filtered  bool
	BatchSize int
}

// Summary is the completion report of one run. Every skipped line is counted
// here - nothing is dropped silently.
type Summary struct {
	RowsRead      int
	RowsStored    int
	RowsSkipped   int // rejected by the filter predicate
	RowsMalformed int // unparseable lines or records without an id
	Elapsed       time.Duration
	RowsPerSec    float64
}

// Transfer streams the input line by line through filter, split and batch
// into the database. Row-level problems are skipped and counted; store-level
// failures abort the run with the batches so far left committed.
func Transfer(opts Options) (*Summary, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = config.DefaultBatchSize
	}

	in, err := os.Open(opts.InputFile)
	if err != nil {
		return nil, errors.Wrap(err, "could not open input file")
	}
	defer in.Close()

	writer, err := database.NewWriter(opts.DBFile, opts.Filtered)
	if err != nil {
		return nil, err
	}
	defer writer.Close()
	if err := writer.CreateSchema(); err != nil {
		return nil, err
	}

	cols := database.MovieColumns(opts.Filtered)
	buf := newBatch(opts.BatchSize)
	sum := &Summary{}
	start := time.Now()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		sum.RowsRead++

		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			sum.RowsMalformed++
			logger.Log.Warnln("Skipped bad JSON at line", lineno)
			continue
		}
		if opts.Filtered && !shouldAdmit(rec) {
			sum.RowsSkipped++
			continue
		}
		movieRow, children, err := splitRecord(rec, cols)
		if err != nil {
			sum.RowsMalformed++
			logger.Log.Warnln("Skipped record at line", lineno, "-", err)
			continue
		}
		buf.add(movieRow, children)
		sum.RowsStored++

		if buf.shouldFlush() {
			movies, children := buf.drain()
			if err := writer.Flush(movies, children); err != nil {
				return nil, err
			}
			elapsed := time.Since(start).Seconds()
			logger.Log.Infof("%d stored | %d skipped | %.1fs | %.0f r/s",
				sum.RowsStored, sum.RowsSkipped+sum.RowsMalformed, elapsed, float64(sum.RowsStored)/elapsed)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read input")
	}

	movies, children := buf.drain()
	if err := writer.Flush(movies, children); err != nil {
		return nil, err
	}
	if err := writer.Finalize(); err != nil {
		return nil, err
	}

	sum.Elapsed = time.Since(start)
	if secs := sum.Elapsed.Seconds(); secs > 0 {
		sum.RowsPerSec = float64(sum.RowsStored) / secs
	}
	return sum, nil
}
