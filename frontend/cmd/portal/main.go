package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/microsmart/portal/frontend/internal/router"
	"github.com/microsmart/portal/frontend/internal/setup"
	"github.com/microsmart/portal/shared/config"
	"github.com/microsmart/portal/shared/logger"
	"github.com/microsmart/portal/shared/telemetry"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 30 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	// missing .env is fine; real deployments use the environment
	_ = godotenv.Load(".env")

	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "frontend/config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	shutdownTelemetry := telemetry.Setup("portal")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			logger.Log.Error("telemetry shutdown", "error", err)
		}
	}()

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		logger.Log.Error("failed to setup dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.CancelFunc()

	server := &http.Server{
		Addr:         ":" + cfg.Public.Port,
		Handler:      router.SetupRouter(deps),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	go func() {
		logger.Log.Info("starting portal", "addr", server.Addr, "api", cfg.Public.APIBaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("shutting down portal")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.Error("graceful shutdown failed", "error", err)
	}
}
