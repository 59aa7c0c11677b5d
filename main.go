package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"geoprospect/adapters/cache"
	"geoprospect/adapters/db"
	"geoprospect/adapters/tabular"
	"geoprospect/app"
	"geoprospect/internal"
	"geoprospect/internal/config"
	"geoprospect/internal/dataset"
	"geoprospect/ports"
	"geoprospect/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const (
	purgeInterval   = time.Minute
	archiveInterval = time.Hour
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// History is optional: the dashboard keeps working without a database
	var repo ports.AnalysisRepository
	historyDB, err := db.Open(ctx, appConfig.Database)
	if err != nil {
		log.Printf("Warning: analysis history disabled: %v", err)
	} else {
		defer historyDB.Close()
		repo = db.NewAnalysisRepository(historyDB)
	}

	analysisCache := cache.New(ctx, appConfig.Cache.RedisURL, appConfig.Cache.TTL)
	if closer, ok := analysisCache.(io.Closer); ok {
		defer closer.Close()
	}

	readerConfig := tabular.DefaultReaderConfig()
	readerConfig.SheetName = appConfig.Data.SheetName
	readerConfig.MaxRows = appConfig.Data.MaxRows

	store := dataset.NewMemoryStore(appConfig.Data.SessionTTL, appConfig.Data.MaxDatasets)

	var archive *dataset.LocalFileStorage
	deps := app.ServiceDeps{
		Reader:     tabular.NewReader(readerConfig),
		Store:      store,
		Repository: repo,
		Cache:      analysisCache,
		Logger:     logger,
	}
	if appConfig.Data.ArchiveUploads {
		archive = dataset.NewLocalFileStorageWithPath(filepath.Join(appConfig.Data.Dir, "uploads"))
		deps.Archive = archive
		log.Printf("Archiving uploads under %s", filepath.Join(appConfig.Data.Dir, "uploads"))
	}

	service := app.NewAnalysisService(deps, app.AnalysisOptions(appConfig.Analysis))

	server, err := ui.NewServer(service, ui.ServerConfig{
		MaxUploadMB: appConfig.Server.MaxUploadMB,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		store.Run(gctx, purgeInterval)
		return nil
	})
	if archive != nil {
		g.Go(func() error {
			cleanArchive(gctx, archive)
			return nil
		})
	}
	g.Go(func() error {
		return server.Start(gctx, ":"+appConfig.Server.Port)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
	log.Println("Server stopped")
}

// cleanArchive removes old archived uploads at startup and then hourly
func cleanArchive(ctx context.Context, archive *dataset.LocalFileStorage) {
	ticker := time.NewTicker(archiveInterval)
	defer ticker.Stop()
	for {
		if n, err := archive.Cleanup(ctx, time.Now()); err != nil {
			log.Printf("[Archive] Cleanup failed: %v", err)
		} else if n > 0 {
			log.Printf("[Archive] Removed %d old uploads", n)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
