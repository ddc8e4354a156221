package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fittrack/internal/config"
	"fittrack/internal/container"
	"fittrack/internal/logger"
	"fittrack/internal/shell"
)

func main() {
	logger.Init()
	log := logger.Get()

	err := godotenv.Load(".env.local")
	if err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	logFile, err := logger.OpenFile(cfg.LogFile)
	if err != nil {
		log.WithError(err).Warn("Logging to stderr")
	} else {
		defer logFile.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := container.New(ctx, cfg, shell.Notifier(os.Stdout))
	if err != nil {
		log.WithError(err).Fatal("Failed to start client")
	}
	defer app.Close()

	if err := shell.NewHandler(app, os.Stdout).Run(ctx, os.Stdin); err != nil {
		log.WithError(err).Error("Input closed with error")
	}
}
