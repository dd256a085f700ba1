package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"blogclient/infrastructure/config"
	"blogclient/infrastructure/di"
	"blogclient/interfaces/cli"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependency container
	container, err := di.InitializeContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Watcher.Stop()

	container.Logger.Info("Client starting",
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.String("environment", cfg.Environment),
	)

	// Pick up a previous session before the first prompt.
	if restored, err := container.Session.Restore(ctx); err != nil {
		container.Logger.Warn("Session restore hit a transient failure; continuing", zap.Error(err))
	} else if restored {
		container.Logger.Info("Previous session restored")
	}

	// Cancel the command loop's requests on Ctrl-C.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
		fmt.Fprintln(os.Stderr)
	}()

	runner := cli.NewRunner(container.Session, container.Content, container.Reset, container.Logger, os.Stdin, os.Stdout)
	if err := runner.Run(ctx); err != nil && ctx.Err() == nil {
		container.Logger.Error("Command loop failed", zap.Error(err))
	}

	if err := container.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}
}
