package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"coderoom/internal/api"
	"coderoom/internal/catalog"
	"coderoom/internal/config"
	"coderoom/internal/engine"
	"coderoom/internal/executor"
	"coderoom/internal/piston"
	"coderoom/internal/room"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	log.SetLevel(level)

	// ---- execution backend ----
	var backend engine.Backend
	switch cfg.ExecBackend {
	case config.BackendDocker:
		backend, err = executor.NewDocker(log)
		if err != nil {
			return fmt.Errorf("init docker backend: %w", err)
		}
	default:
		backend = piston.NewClient(cfg.PistonURL)
	}

	cache := catalog.New(backend, cfg.RuntimesTTL, log)
	gateway := engine.NewGateway(cache, backend, cfg.DefaultTimeout, cfg.MaxTimeout)

	registry := room.NewRegistry()
	hub := room.NewHub(registry, log)

	// ---- router ----
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	api.New(gateway, cache, hub, cfg.MaxCodeChars, log).Register(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":    cfg.Port,
			"backend": cfg.ExecBackend,
		}).Info("server listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
