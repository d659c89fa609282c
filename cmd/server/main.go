package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/enfq/app/internal/api"
	"github.com/enfq/app/internal/app"
	"github.com/enfq/app/internal/config"
	"github.com/enfq/app/internal/logger"
	"github.com/enfq/app/internal/payment"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Setup("info", "json").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg.Server.LogLevel, cfg.Server.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The UI shell opens the checkout page itself from the gate snapshot.
	rt, err := app.Build(ctx, cfg, payment.LogOpener(log), log)
	if err != nil {
		log.Error("failed to start", "error", err)
		os.Exit(1)
	}

	log.Info("question source ready", "provider", cfg.LLM.Provider, "model", rt.Generator.ModelName())
	err = api.Serve(ctx, api.NewServer(cfg.Server, rt, log), log)
	rt.Close()
	if err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}
