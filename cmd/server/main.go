// Package main - Entry point for the quote-pricer HTTP server
package main

import (
	"flag"
	"net/http"
	"os"

	"go.uber.org/zap"

	"quote-pricer/api"
	"quote-pricer/core/pricer"
	"quote-pricer/internal/config"
	"quote-pricer/internal/logging"
)

const version = "0.1.0"

func main() {
	cfgPath := flag.String("config", "quote-pricer.json", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logging.Error("failed to load config", zap.Error(err))
		os.Exit(1)
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		logging.Error("failed to initialize logging", zap.Error(err))
	}
	defer logging.Sync()

	// Configuration errors are fatal at startup, not per request
	pctx, err := pricer.LoadContext(cfg)
	if err != nil {
		logging.Error("failed to load rating context", zap.Error(err))
		os.Exit(1)
	}

	server := api.NewServer(cfg, pctx, version)

	logging.Info("quote-pricer server listening",
		zap.String("addr", cfg.Server.Addr),
		zap.String("version", version))

	if err := http.ListenAndServe(cfg.Server.Addr, server); err != nil {
		logging.Fatal("server failed", zap.Error(err))
	}
}
