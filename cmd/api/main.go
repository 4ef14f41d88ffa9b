package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Alyfish/spacestest-v0-mvp/internal/config"
	"github.com/Alyfish/spacestest-v0-mvp/internal/container"
	"github.com/Alyfish/spacestest-v0-mvp/internal/logger"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	ctx := context.Background()
	c, err := container.New(ctx, cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize container")
		os.Exit(1)
	}
	defer c.Close()

	server := &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      c.Handler,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
		IdleTimeout:  2 * cfg.RequestTimeout,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"address": server.Addr,
		}).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
		os.Exit(1)
	}
	logger.Info("Server exited")
}
