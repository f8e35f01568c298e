package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/medbook/internal/client/cli"
	"github.com/dmitrijs2005/medbook/internal/client/config"
	"github.com/dmitrijs2005/medbook/internal/logging"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	logger.Debug(ctx, "configuration loaded", "server", cfg.ServerURL, "store", cfg.StorePath, "s3_backup", cfg.Backup.Enabled())

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "exited with error", "error", err)
		os.Exit(1)
	}

}
