// Package config loads the pipeline configuration from file and
// environment into one explicit struct passed into component
// constructors; no process-wide state beyond the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	RDBMS    RDBMSConfig    `yaml:"rdbms" mapstructure:"rdbms"`
	Desktop  DesktopConfig  `yaml:"desktop" mapstructure:"desktop"`
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Conform  ConformConfig  `yaml:"conform" mapstructure:"conform"`
	Dates    DatesConfig    `yaml:"dates" mapstructure:"dates"`
	Validate ValidateConfig `yaml:"validate" mapstructure:"validate"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// RDBMSConfig configures the enterprise relational source.
type RDBMSConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// DesktopConfig configures the desktop database source (a workbook
// export, one sheet per table).
type DesktopConfig struct {
	WorkbookPath string `yaml:"workbook_path" mapstructure:"workbook_path"`
}

// DataConfig holds the stage boundary directories.
type DataConfig struct {
	RawDir       string `yaml:"raw_dir" mapstructure:"raw_dir"`
	StagingDir   string `yaml:"staging_dir" mapstructure:"staging_dir"`
	WarehouseDir string `yaml:"warehouse_dir" mapstructure:"warehouse_dir"`
}

// ConformConfig declares, per entity type, the source whose values win
// attribute conflicts outright.
type ConformConfig struct {
	Authority map[string]string `yaml:"authority" mapstructure:"authority"`
}

// DatesConfig optionally pins the generated date dimension range;
// empty values fall back to the observed min/max transaction dates.
type DatesConfig struct {
	Start string `yaml:"start" mapstructure:"start"` // YYYY-MM-DD
	End   string `yaml:"end" mapstructure:"end"`
}

// Range parses the configured override. ok is false when no override
// is configured.
func (d DatesConfig) Range() (start, end time.Time, ok bool, err error) {
	if d.Start == "" || d.End == "" {
		return time.Time{}, time.Time{}, false, nil
	}
	start, err = time.Parse("2006-01-02", d.Start)
	if err != nil {
		return time.Time{}, time.Time{}, false, eris.Wrapf(err, "config: parse dates.start %q", d.Start)
	}
	end, err = time.Parse("2006-01-02", d.End)
	if err != nil {
		return time.Time{}, time.Time{}, false, eris.Wrapf(err, "config: parse dates.end %q", d.End)
	}
	return start, end, true, nil
}

// ValidateConfig holds the validator thresholds.
type ValidateConfig struct {
	MaxNullRate float64 `yaml:"max_null_rate" mapstructure:"max_null_rate"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("WAREHOUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.raw_dir", "data/raw")
	v.SetDefault("data.staging_dir", "data/staging")
	v.SetDefault("data.warehouse_dir", "data/warehouse")
	v.SetDefault("conform.authority", map[string]string{
		"employees": "rdbms",
		"orders":    "desktop",
	})
	v.SetDefault("validate.max_null_rate", 0.9)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
