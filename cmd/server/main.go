package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	_ "facturas/docs"
	"facturas/internal/app"
	"facturas/internal/config"
	"facturas/internal/handler"
	"facturas/internal/logger"
	"facturas/internal/router"
)

// @title Facturas API
// @version 1.0
// @description PDF invoice text extraction and normalization.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.

func main() {
	if err := run(); err != nil {
		stdlog.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Log)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	components, err := app.Build(cfg, log)
	if err != nil {
		return err
	}

	// Initialize handlers
	invoiceH := handler.NewInvoiceHandler(components.Invoices, cfg.PDF.MaxFileSizeMB)
	uploadH := handler.NewUploadHandler(components.Uploads)
	healthH := handler.NewHealthHandler(components.Storage, cfg.S3.Bucket)

	// Setup router
	r := router.Setup(cfg, log, invoiceH, uploadH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Server.Port).
			Bool("storage", components.Storage != nil).
			Bool("orchestrator", components.Orchestrator != nil).
			Bool("auth", cfg.Auth.Enabled()).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	log.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
