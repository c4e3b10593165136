package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/movietools/jsonl2sqlite/config"
	"github.com/movietools/jsonl2sqlite/loader"
	"github.com/movietools/jsonl2sqlite/logger"
)

var version string
var buildstamp string
var githash string

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: jsonl2sqlite [-filtered] [-config file] [-batchsize n] <movies.jsonl> [movies.db]")
	flag.PrintDefaults()
}

func main() {
	filtered := flag.Bool("filtered", false, "skip adult movies and records without poster or overview; drops the adult column")
	configfile := flag.String("config", config.Configfile, "optional TOML config file")
	batchsize := flag.Int("batchsize", 0, "rows per transaction (overrides config)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}
	inputfile := flag.Arg(0)
	dbfile := "movies.db"
	if flag.NArg() > 1 {
		dbfile = flag.Arg(1)
	}

	cfg := config.LoadCfg(*configfile)
	if *filtered {
		cfg.Loader.Filtered = true
	}
	if *batchsize > 0 {
		cfg.Loader.BatchSize = *batchsize
	}

	logger.InitLogger(logger.LoggerConfig{
		LogLevel:     cfg.General.LogLevel,
		LogFileSize:  cfg.General.LogFileSize,
		LogFileCount: cfg.General.LogFileCount,
		LogCompress:  cfg.General.LogCompress,
	})
	logger.Log.Infoln("Movie JSONL to SQLite Loader - version " + version + " " + githash + " from " + buildstamp)

	if _, err := os.Stat(inputfile); os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "input file not found:", inputfile)
		os.Exit(1)
	}

	if cfg.Loader.Filtered {
		logger.Log.Infoln("Started filtered import of", inputfile, "into", dbfile)
	} else {
		logger.Log.Infoln("Started import of", inputfile, "into", dbfile)
	}

	summary, err := loader.Transfer(loader.Options{
		InputFile: inputfile,
		DBFile:    dbfile,
		Filtered:  cfg.Loader.Filtered,
		BatchSize: cfg.Loader.BatchSize,
	})
	if err != nil {
		logger.Log.Errorln("Import failed:", err)
		os.Exit(1)
	}

	logger.Log.Infof("Finished: %d stored | %d skipped | %d malformed | %.1fs (%.0f r/s)",
		summary.RowsStored, summary.RowsSkipped, summary.RowsMalformed,
		summary.Elapsed.Seconds(), summary.RowsPerSec)
}
