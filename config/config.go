package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
)

const Configfile string = "./config/config.toml"

// DefaultBatchSize bounds memory to one batch worth of rows regardless of
// input size.
const DefaultBatchSize = 1000

type GeneralConfig struct {
	LogLevel     string `koanf:"log_level"`
	LogFileSize  int    `koanf:"log_file_size"`
	LogFileCount int    `koanf:"log_file_count"`
	LogCompress  bool   `koanf:"log_compress"`
}

type LoaderConfig struct {
	BatchSize int  `koanf:"batch_size"`
	Filtered  bool `koanf:"filtered"`
}

type MainConfig struct {
	General GeneralConfig `koanf:"general"`
	Loader  LoaderConfig  `koanf:"loader"`
}

// LoadCfg reads the optional TOML config file. A missing file is not an
// error - the loader runs fine on defaults and CLI flags alone.
func LoadCfg(configfile string) MainConfig {
	cfg := MainConfig{
		General: GeneralConfig{LogLevel: "Info", LogFileSize: 5, LogFileCount: 1},
		Loader:  LoaderConfig{BatchSize: DefaultBatchSize},
	}

	if _, err := os.Stat(configfile); os.IsNotExist(err) {
		return cfg
	}

	var k = koanf.New(".")
	f := file.Provider(configfile)
	if strings.Contains(configfile, "toml") {
		err := k.Load(f, toml.Parser())
		if err != nil {
			fmt.Println("Error loading config. ", err)
			return cfg
		}
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		fmt.Println("Error loading config. ", err)
	}
	validateAndSetDefaults(&cfg)
	return cfg
}

func validateAndSetDefaults(cfg *MainConfig) {
	if cfg.Loader.BatchSize <= 0 {
		cfg.Loader.BatchSize = DefaultBatchSize
	}
	if cfg.Loader.BatchSize > 1000000 {
		cfg.Loader.BatchSize = 1000000
	}
	if cfg.General.LogLevel == "" {
		cfg.General.LogLevel = "Info"
	}
	if cfg.General.LogFileSize <= 0 {
		cfg.General.LogFileSize = 5
	}
	if cfg.General.LogFileCount <= 0 {
		cfg.General.LogFileCount = 1
	}
}
