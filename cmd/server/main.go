package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/weeklypoll/internal/adapters/handler/http"
	"github.com/vncsmyrnk/weeklypoll/internal/adapters/metrics"
	"github.com/vncsmyrnk/weeklypoll/internal/adapters/scheduler"
	"github.com/vncsmyrnk/weeklypoll/internal/adapters/telegram"
	"github.com/vncsmyrnk/weeklypoll/internal/app"
	"github.com/vncsmyrnk/weeklypoll/internal/config"
	"github.com/vncsmyrnk/weeklypoll/internal/core/services"
	"github.com/vncsmyrnk/weeklypoll/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.Port, "port", cfg.Port, "HTTP port")
	flag.StringVar(&cfg.Store, "store", cfg.Store, "Poll store: memory, file, postgres or redis")
	flag.StringVar(&cfg.StorePath, "store-path", cfg.StorePath, "Poll file for the file store")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	flag.Parse()

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.Error("invalid log level", "error", err)
		os.Exit(1)
	}
	logger := logging.New(level)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.ValidateBot(); err != nil {
		return err
	}
	location, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	messenger, err := telegram.NewMessenger(cfg.BotToken, cfg.ChatID)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	renderer := cfg.Renderer()
	pollService := services.NewPollService(storage.Repository)
	dispatcher := services.NewDispatcher(pollService, messenger, renderer,
		services.WithOwner(cfg.OwnerID),
		services.WithDeduplicator(storage.Deduplicator),
		services.WithMetrics(recorder),
		services.WithLogger(logger),
	)

	secret := cfg.WebhookSecret
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn("WEBHOOK_SECRET not set, using a random one for this run")
	}
	if cfg.WebhookURL != "" {
		url := cfg.WebhookURL + "/webhook/" + secret
		if err := messenger.SetWebhook(ctx, url); err != nil {
			return err
		}
		logger.Info("webhook registered", "url", cfg.WebhookURL+"/webhook/…")
	} else {
		logger.Warn("WEBHOOK_URL not set, telegram updates will not be delivered")
	}

	weekly, err := scheduler.New(cfg.ResetSchedule, location, dispatcher, logger)
	if err != nil {
		return err
	}
	weekly.Start()
	defer weekly.Stop()

	handler := http.NewHandler(
		http.NewPollHandler(pollService, renderer),
		http.NewWebhookHandler(dispatcher, secret, logger),
		recorder.Handler(),
	)
	server := &stdhttp.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
