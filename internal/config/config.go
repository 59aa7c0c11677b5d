package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"geoprospect/internal/errors"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// AppName is used for XDG data directories and the default SQLite file name
const AppName = "geoprospect"

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Data     DataConfig
	Analysis AnalysisConfig
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string
	GinMode     string
	MaxUploadMB int64
}

// DatabaseConfig holds analysis history storage settings.
// An empty URL selects the embedded SQLite database at SQLitePath.
type DatabaseConfig struct {
	URL        string
	SQLitePath string
}

// CacheConfig holds analysis result cache settings
type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

// DataConfig holds upload and session table settings
type DataConfig struct {
	Dir            string
	SessionTTL     time.Duration
	MaxDatasets    int
	MaxRows        int
	SheetName      string
	ArchiveUploads bool
}

// AnalysisConfig holds clustering defaults
type AnalysisConfig struct {
	KMin           int
	KMax           int
	Seed           int64
	NInit          int
	MaxIter        int
	ElbowWorkers   int
	BelowDetection string // "skip" or "half" for censored cells like "<0.5"
}

// Load reads configuration from the optional GEOPROSPECT_CONFIG file and
// environment variables, then validates it
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if path := os.Getenv("GEOPROSPECT_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(errors.ConfigInvalid(err.Error()), "failed to read config file %s", path)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	dataDir := filepath.Join(xdg.DataHome, AppName)

	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("max_upload_mb", 32)
	v.SetDefault("log_level", "INFO")

	v.SetDefault("database_url", "")
	v.SetDefault("sqlite_path", "")

	v.SetDefault("redis_url", "")
	v.SetDefault("cache_ttl", "30m")

	v.SetDefault("data_dir", dataDir)
	v.SetDefault("session_ttl", "2h")
	v.SetDefault("max_datasets", 64)
	v.SetDefault("max_rows", 200000)
	v.SetDefault("sheet_name", "")
	v.SetDefault("archive_uploads", false)

	v.SetDefault("k_min", 1)
	v.SetDefault("k_max", 8)
	v.SetDefault("kmeans_seed", 42)
	v.SetDefault("kmeans_n_init", 10)
	v.SetDefault("kmeans_max_iter", 300)
	v.SetDefault("elbow_workers", 0)
	v.SetDefault("below_detection", "skip")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        v.GetString("port"),
			GinMode:     v.GetString("gin_mode"),
			MaxUploadMB: v.GetInt64("max_upload_mb"),
		},
		Database: DatabaseConfig{
			URL:        strings.TrimSpace(v.GetString("database_url")),
			SQLitePath: v.GetString("sqlite_path"),
		},
		Cache: CacheConfig{
			RedisURL: strings.TrimSpace(v.GetString("redis_url")),
			TTL:      v.GetDuration("cache_ttl"),
		},
		Data: DataConfig{
			Dir:            v.GetString("data_dir"),
			SessionTTL:     v.GetDuration("session_ttl"),
			MaxDatasets:    v.GetInt("max_datasets"),
			MaxRows:        v.GetInt("max_rows"),
			SheetName:      v.GetString("sheet_name"),
			ArchiveUploads: v.GetBool("archive_uploads"),
		},
		Analysis: AnalysisConfig{
			KMin:           v.GetInt("k_min"),
			KMax:           v.GetInt("k_max"),
			Seed:           v.GetInt64("kmeans_seed"),
			NInit:          v.GetInt("kmeans_n_init"),
			MaxIter:        v.GetInt("kmeans_max_iter"),
			ElbowWorkers:   v.GetInt("elbow_workers"),
			BelowDetection: strings.ToLower(strings.TrimSpace(v.GetString("below_detection"))),
		},
		LogLevel: v.GetString("log_level"),
	}

	if cfg.Database.URL == "" && cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = filepath.Join(cfg.Data.Dir, AppName+".db")
	}

	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// UsesPostgres reports whether DATABASE_URL points at a PostgreSQL server
func (c DatabaseConfig) UsesPostgres() bool {
	return strings.HasPrefix(c.URL, "postgres://") || strings.HasPrefix(c.URL, "postgresql://")
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Server.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Database.URL != "" && !config.Database.UsesPostgres() {
		return errors.ConfigInvalid("DATABASE_URL must be a postgres:// URL")
	}
	if config.Analysis.KMin < 1 {
		return errors.ConfigInvalid("K_MIN must be at least 1")
	}
	if config.Analysis.KMax < config.Analysis.KMin {
		return errors.ConfigInvalid("K_MAX must not be lower than K_MIN")
	}
	if config.Analysis.NInit < 1 || config.Analysis.MaxIter < 1 {
		return errors.ConfigInvalid("KMEANS_N_INIT and KMEANS_MAX_ITER must be positive")
	}
	if config.Analysis.BelowDetection != "skip" && config.Analysis.BelowDetection != "half" {
		return errors.ConfigInvalid("BELOW_DETECTION must be skip or half")
	}
	if config.Data.MaxDatasets < 1 {
		return errors.ConfigInvalid("MAX_DATASETS must be positive")
	}
	if config.Data.SessionTTL <= 0 {
		return errors.ConfigInvalid("SESSION_TTL must be a positive duration")
	}
	return nil
}
