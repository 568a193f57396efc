// Command evaluator serves the synchronous evaluation endpoint: it
// compiles and runs one submission's test cases against a sandboxed
// toolchain and reports a per-test and overall verdict.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"judgecore/internal/engine"
	"judgecore/internal/engine/runner"
	"judgecore/internal/evaluation"
	"judgecore/internal/httpserver"
	"judgecore/internal/statuscache"
	"judgecore/pkg/logging"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultConfigPath = "configs/evaluator.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return
	}

	if err := logging.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() {
		_ = logging.Sync()
	}()

	if err := os.MkdirAll(appCfg.Workspace.BaseDir, 0o755); err != nil {
		logging.Error(context.Background(), "create workspace base dir failed", zap.Error(err))
		return
	}

	eng, err := engine.NewEngine(appCfg.Sandbox.toEngineConfig())
	if err != nil {
		logging.Error(context.Background(), "init sandbox engine failed", zap.Error(err))
		return
	}

	svc := evaluation.NewService(runner.NewRunner(eng), appCfg.Workspace.BaseDir)

	var cache *statuscache.Cache
	if appCfg.StatusCache.Addr != "" {
		cache, err = statuscache.New(statuscache.Config{
			Addr:     appCfg.StatusCache.Addr,
			Password: appCfg.StatusCache.Password,
			DB:       appCfg.StatusCache.DB,
			TTL:      appCfg.StatusCache.TTL,
		})
		if err != nil {
			logging.Error(context.Background(), "status cache unavailable, continuing without it", zap.Error(err))
			cache = nil
		}
	}

	limiter := rate.NewLimiter(rate.Limit(appCfg.RateLimit.RequestsPerSecond), appCfg.RateLimit.Burst)
	router := httpserver.NewRouter(svc, cache, limiter)

	listener, err := net.Listen("tcp", appCfg.Server.Addr)
	if err != nil {
		logging.Error(context.Background(), "init http listener failed", zap.Error(err))
		return
	}

	httpServer := &http.Server{
		Addr:         appCfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  appCfg.Server.ReadTimeout,
		WriteTimeout: appCfg.Server.WriteTimeout,
		IdleTimeout:  appCfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info(context.Background(), "evaluator http server started", zap.String("addr", appCfg.Server.Addr))
		errCh <- httpServer.Serve(listener)
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logging.Info(context.Background(), "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logging.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
	if cache != nil {
		if err := cache.Close(); err != nil {
			logging.Error(context.Background(), "status cache close failed", zap.Error(err))
		}
	}
}
