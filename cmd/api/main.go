package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/docforge-backend/config"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/bootstrap"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Base().Fatalf("config: %v", err)
	}
	logging.Configure(cfg.App.LogLevel, cfg.App.Environment)
	log := logging.Base()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("%s listening on :%s (storage=%s auth=%s)", bootstrap.ServiceName, cfg.Server.Port, cfg.App.Storage, cfg.Firebase.AuthMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	// generation calls may still be in flight; give them the upstream timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Generation.Timeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}
