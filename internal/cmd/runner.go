package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"shopbot/internal/bootstrap"
	"shopbot/internal/config"
	"shopbot/internal/logger"
	tg "shopbot/internal/telegram"
)

const configEnvVar = "CONFIG_PATH"

// Run loads configuration, bootstraps the app, and starts the bot runtime.
// It blocks until SIGINT/SIGTERM or a fatal runtime error.
func Run(defaultConfigPath string) error {
	cfgPath := os.Getenv(configEnvVar)
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}
	if cfgPath == "" {
		return fmt.Errorf("cmd: config path not provided via %s", configEnvVar)
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("cmd: failed to load config: %w", err)
	}

	app, err := bootstrap.Run(cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap failed: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("app close error: %v", err)
		}
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	runOpts, err := app.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: telegram options build failed: %w", err)
	}

	startedAt := time.Now()
	runOpts.OnStart = func(ctx context.Context, rt tg.Runtime) error {
		logger.L.With("component", "app").Info("app ready",
			slog.String("event", "ready"),
			slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
		)
		return nil
	}
	runOpts.OnStop = func(ctx context.Context, rt tg.Runtime) error {
		logger.L.With("component", "app").Info("shutting down...",
			slog.String("event", "shutdown"),
		)
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return tg.RunTelegram(ctx, runOpts)
}
