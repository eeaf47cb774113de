// Overlay engine server - scans the screen for text and serves
// translation overlays to connected clients
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GriffinCanCode/good-reader/backend/platform/internal/config"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/ocr"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/ocr/paddle"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/ocr/tesseract"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/orchestrator"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/overlay"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/screen"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/server"
	"github.com/GriffinCanCode/good-reader/backend/platform/internal/translate"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	cfg := config.Load()

	capturer, err := screen.New()
	if err != nil {
		slog.Error("failed to create screen capturer", "error", err)
		os.Exit(1)
	}
	defer capturer.Close()

	if cfg.CaptureRegion != "" {
		region, err := screen.ParseRegion(cfg.CaptureRegion)
		if err == nil {
			err = region.Validate()
		}
		if err != nil {
			slog.Error("invalid capture region", "region", cfg.CaptureRegion, "error", err)
			os.Exit(1)
		}
		capturer.SetRegion(region)
	}

	var engine ocr.Engine
	switch cfg.OCRProvider {
	case "tesseract":
		t, err := tesseract.New(cfg.TesseractLang)
		if err != nil {
			slog.Error("failed to init tesseract", "lang", cfg.TesseractLang, "error", err)
			os.Exit(1)
		}
		defer func() { _ = t.Close() }()
		engine = t
	default:
		engine = paddle.New(cfg.OCRAddr)
	}

	translator := translate.NewDeepL(cfg.TranslateAddr, cfg.TranslateAPIKey)

	// Overlay events flow out to websocket clients
	feed := overlay.NewFeed()
	renderer := overlay.NewRemote(feed)

	orch := orchestrator.New(cfg, capturer, engine, translator, renderer)
	srv := server.New(orch, feed)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.ScanAutostart {
		if err := orch.Start(ctx); err != nil {
			slog.Error("scan start failed", "error", err)
		}
	}

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("overlay engine starting",
			"http", cfg.HTTPAddr,
			"ocr", engine.Name(),
			"translator", translator.Name(),
			"autostart", cfg.ScanAutostart)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}

	orch.Stop()
	slog.Info("shutdown complete")
}
