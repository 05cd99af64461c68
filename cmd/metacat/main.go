package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gear6io/metacat/cli"
	"github.com/gear6io/metacat/server/config"
)

func main() {
	logCfg := config.LoadDefaultConfig().Log
	logCfg.Level = "warn"
	if level := os.Getenv("METACAT_LOG_LEVEL"); level != "" {
		logCfg.Level = level
	}

	logger, logFile, err := config.SetupLogger(&logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = context.WithValue(ctx, cli.LoggerKey, logger)

	if err := cli.ExecuteWithContext(ctx); err != nil {
		logger.Debug().Err(err).Msg("Command failed")
		cancel()
		logFile.Close()
		os.Exit(1)
	}
}
