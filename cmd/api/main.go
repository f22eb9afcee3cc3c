package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"estate-api/internal/app"
	"estate-api/internal/core/config"
	"estate-api/internal/core/logger"
	"estate-api/internal/core/server"
	"estate-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad("")
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate(cfg.Log.File))
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()
	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, router.NewAPIEngine(a.Options, a.Registry),
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("estate api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
		zap.String("store", cfg.DB.Driver),
	)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("estate api stopped", zap.Error(err))
		}
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if err := a.Close(sctx); err != nil {
		log.Warn("release backing services", zap.Error(err))
	}
	log.Info("estate api stopped gracefully")
}
