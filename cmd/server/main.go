package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"capworks/internal/app/server"
	"capworks/internal/platform/config"
	"capworks/internal/platform/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Must(logger.New(cfg.Environment))
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
	if err := app.Serve(ctx); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
