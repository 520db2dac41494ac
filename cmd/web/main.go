package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/passgen/passgen-go/internal/clipboard"
	"github.com/passgen/passgen-go/internal/config"
	"github.com/passgen/passgen-go/internal/generator"
	"github.com/passgen/passgen-go/internal/handler"
	"github.com/passgen/passgen-go/internal/service"
	"github.com/passgen/passgen-go/internal/widget"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	clip, err := clipboard.New(cfg.Clipboard)
	if errors.Is(err, clipboard.ErrUnavailable) {
		slog.Warn("system clipboard unavailable, copies stay in memory", "error", err)
	} else if err != nil {
		slog.Error("invalid clipboard mode", "mode", cfg.Clipboard, "error", err)
		os.Exit(1)
	}

	w := widget.New(clip, widget.WithNotificationTTL(cfg.NotificationTTL))
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router := handler.NewRouter(ctx,
		handler.NewWidgetHandler(w),
		handler.NewGeneratorHandler(service.NewGeneratorService(generator.DefaultSource())),
		handler.RateLimit{RPS: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "clipboard", cfg.Clipboard)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
