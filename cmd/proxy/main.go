// Command proxy fronts the problem catalog: it resolves a submission's
// problem id into test cases, forwards the evaluation request to the
// engine, and relays its response back to the caller unchanged.
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

	"judgecore/api/problempb"
	"judgecore/internal/proxy"
	"judgecore/internal/proxy/problemclient"
	"judgecore/pkg/logging"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const defaultConfigPath = "configs/proxy.yaml"

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

	grpcConn, err := grpc.Dial(appCfg.Problem.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logging.Error(context.Background(), "dial problem catalog failed", zap.Error(err))
		return
	}
	defer grpcConn.Close()

	problemGRPC := problempb.NewProblemServiceClient(grpcConn)
	pc := problemclient.NewClient(problemGRPC)

	p := proxy.NewProxy(pc, appCfg.Engine.Addr, appCfg.Engine.Timeout)
	limiter := rate.NewLimiter(rate.Limit(appCfg.RateLimit.RequestsPerSecond), appCfg.RateLimit.Burst)
	router := proxy.NewRouter(p, limiter)

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
		logging.Info(context.Background(), "submission proxy http server started", zap.String("addr", appCfg.Server.Addr))
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
}
