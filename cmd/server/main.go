package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ksalp/portal/internal/app"
	"github.com/ksalp/portal/internal/pkg/config"
	"github.com/ksalp/portal/pkg/logger"
)

// @title        ksalp.ch portal API
// @version      1.0
// @description  Accounts, sessions and registration of the ksalp.ch school portal.
// @BasePath     /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
	})

	access, closer, err := logger.NewAccess(cfg.AccessLogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("access log")
	}

	runErr := app.Run(ctx, cfg, log, access)
	_ = closer.Close()
	if runErr != nil {
		log.Fatal().Err(runErr).Msg("server stopped")
	}
}
