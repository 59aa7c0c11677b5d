package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"geoprospect/adapters/db"
	"geoprospect/adapters/tabular"
	"geoprospect/app"
	"geoprospect/domain/dataset"
	"geoprospect/internal"
	"geoprospect/internal/config"
	datastore "geoprospect/internal/dataset"
	"geoprospect/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "geoprospect-cli",
		Short:         "Log-probability and K-means analysis of geochemical tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newColumnsCmd(),
		newAnalyzeCmd(),
		newFreqCmd(),
		newHistoryCmd(),
		newMigrateCmd(),
	)
	return rootCmd
}

// loadConfig returns the environment configuration, or defaults when it is
// invalid so file commands still work
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: using defaults, failed to load config: %v\n", err)
		return &config.Config{
			Analysis: config.AnalysisConfig{BelowDetection: "skip"},
			Data:     config.DataConfig{MaxRows: tabular.DefaultReaderConfig().MaxRows},
		}
	}
	return cfg
}

func newReader(cfg *config.Config, sheet string) *tabular.Reader {
	readerConfig := tabular.DefaultReaderConfig()
	readerConfig.MaxRows = cfg.Data.MaxRows
	readerConfig.SheetName = cfg.Data.SheetName
	if sheet != "" {
		readerConfig.SheetName = sheet
	}
	return tabular.NewReader(readerConfig)
}

// session is a one-shot analysis service holding a single file
type session struct {
	service *app.AnalysisService
	dataset *dataset.Dataset
	close   func()
}

func openSession(ctx context.Context, cfg *config.Config, path, sheet string, save bool) (*session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	closeFn := func() {}
	deps := app.ServiceDeps{
		Reader: newReader(cfg, sheet),
		Store:  datastore.NewMemoryStore(time.Hour, 1),
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
	}
	if save {
		repo, closeDB, err := openRepository(ctx, cfg)
		if err != nil {
			return nil, err
		}
		deps.Repository = repo
		closeFn = closeDB
	}

	service := app.NewAnalysisService(deps, app.AnalysisOptions(cfg.Analysis))
	ds, err := service.Upload(ctx, filepath.Base(path), data)
	if err != nil {
		closeFn()
		return nil, err
	}
	return &session{service: service, dataset: ds, close: closeFn}, nil
}

func openRepository(ctx context.Context, cfg *config.Config) (ports.AnalysisRepository, func(), error) {
	if cfg.Database.URL == "" && cfg.Database.SQLitePath == "" {
		return nil, nil, fmt.Errorf("no history database configured")
	}
	historyDB, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return db.NewAnalysisRepository(historyDB), func() { historyDB.Close() }, nil
}
