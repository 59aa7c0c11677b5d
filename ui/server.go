package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"geoprospect/app"
	"geoprospect/internal"

	"github.com/gin-gonic/gin"
)

//go:embed templates/* static/css/* static/js/*
var embeddedFiles embed.FS

const shutdownTimeout = 10 * time.Second

// ServerConfig holds the web server settings
type ServerConfig struct {
	MaxUploadMB int64
	Logger      *internal.Logger
}

// Server represents the web server for the prospection dashboard
type Server struct {
	router    *gin.Engine
	service   *app.AnalysisService
	templates *template.Template
	about     template.HTML
	maxUpload int64
	log       *internal.Logger
}

// NewServer creates a new web server instance with templates parsed and routes registered
func NewServer(service *app.AnalysisService, cfg ServerConfig) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 32
	}

	s := &Server{
		router:    gin.Default(),
		service:   service,
		maxUpload: cfg.MaxUploadMB << 20,
		log:       logger.With("UI"),
	}
	s.router.MaxMultipartMemory = s.maxUpload

	if err := s.loadTemplates(); err != nil {
		return nil, err
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, mainly for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware serves the embedded static assets
func (s *Server) setupMiddleware() {
	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		log.Printf("[setupMiddleware] Error creating static filesystem: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/about", s.handleAbout)
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.POST("/datasets", s.handleUpload)
	api.GET("/datasets/:id", s.handleDataset)
	api.GET("/datasets/:id/rows", s.handleRows)
	api.GET("/datasets/:id/analysis", s.handleAnalysis)
	api.GET("/datasets/:id/frequency", s.handleFrequency)
	api.GET("/datasets/:id/report.md", s.handleReport)
	api.GET("/datasets/:id/report.xlsx", s.handleWorkbook)

	api.GET("/figures/empty", s.handleEmptyFigure)
	api.GET("/figures/map", s.handleMapFigure)

	api.GET("/analyses", s.handleHistory)
	api.GET("/analyses/:id", s.handleAnalysisRecord)
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting geoprospect dashboard on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("[Server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
