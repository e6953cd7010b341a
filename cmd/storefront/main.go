package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aq2208/storefront-api/configs"
	"github.com/aq2208/storefront-api/internal/bootstrap"
	"github.com/aq2208/storefront-api/internal/logging"
)

func main() {
	env := os.Getenv("APP_ENV") // dev | prod
	if env == "" {
		env = "dev"
	}

	cfg, err := configs.Load("configs", env)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := bootstrap.InitWithConfig(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	l := logging.FromCtx(ctx)
	go func() {
		l.Info("storefront-api listening", "env", env, "addr", cfg.App.HTTPAddr)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	l.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		l.Error("shutdown", "err", err)
	}
}
