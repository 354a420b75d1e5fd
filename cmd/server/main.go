package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"pkgindex-web/internal/config"
	"pkgindex-web/internal/logging"
	"pkgindex-web/internal/version"
	"pkgindex-web/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (ini, yaml, toml or json)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := logging.New(cfg.Log.Level, cfg.Environment)

	container, err := server.NewContainerWithLogger(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize container")
	}
	defer container.Close()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: container.Router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	logger.WithFields(logrus.Fields{
		"port":            cfg.Port,
		"root_path":       cfg.RootPath,
		"environment":     cfg.Environment,
		"deployment_mode": config.GetDeploymentMode(),
		"version":         version.Get(),
	}).Info("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
		return
	}

	logger.Info("Server exited")
}
