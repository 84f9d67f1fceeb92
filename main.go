package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/vadiminshakov/tally/config"
	"github.com/vadiminshakov/tally/internal/clients"
	"github.com/vadiminshakov/tally/internal/services/balance"
	"github.com/vadiminshakov/tally/internal/services/pricer"
	"github.com/vadiminshakov/tally/internal/setup"
	"github.com/vadiminshakov/tally/internal/storage/credentials"
	"github.com/vadiminshakov/tally/internal/web"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Get()
	if err != nil {
		logger.Fatal("failed to get configuration", zap.Error(err))
	}

	store, err := credentials.NewWALStore(filepath.Join(cfg.DataDir, "credentials"))
	if err != nil {
		logger.Fatal("failed to open credential store", zap.Error(err))
	}
	defer store.Close()

	if cfg.Setup {
		if err := setup.RunTUI(store); err != nil {
			logger.Fatal("setup failed", zap.Error(err))
		}
		return
	}

	accountClient := clients.NewAccountClient(cfg.BaseURL, cfg.HTTPTimeout)
	binancePricer := pricer.NewBinancePricer(clients.NewBinanceClient("", "", cfg.HTTPTimeout))

	service := balance.NewService(logger, cfg.Mode, cfg.QuoteAsset, cfg.ReferenceAsset,
		store, accountClient, binancePricer)

	server := web.NewServer(cfg.Listen, service, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("tally started",
		zap.String("addr", cfg.Listen),
		zap.String("mode", cfg.Mode.String()),
		zap.String("quote", cfg.QuoteAsset))

	if err := server.Start(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
