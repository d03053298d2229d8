package main

import (
	"context"
	"fmt"
	"os"
	"taskManager/internal/app"
	"taskManager/internal/config"
	"taskManager/internal/logger"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.uber.org/zap"
)

// bounds store connection, ping retries and migrations
const initTimeout = 2 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	application := app.New(cfg)
	if err := application.Init(ctx); err != nil {
		cancel()
		logger.Error("App: init failed", err)
		_ = application.Shutdown(context.Background())
		os.Exit(1)
	}
	cancel()

	application.Start()
	logger.Info("Server started", zap.String("addr", application.Addr()))

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"task-api": func(ctx context.Context) error {
				logger.Info("Graceful shutdown initiated")
				return application.Shutdown(ctx)
			},
		},
	)

	exitCode := <-wait
	os.Exit(exitCode)
}
