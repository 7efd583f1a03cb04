// Package main is the entry point for the sprintsync CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"sprintsync/internal/backend/sprintapi"
	"sprintsync/internal/cli"
	"sprintsync/internal/commands"
	"sprintsync/internal/config"
	"sprintsync/internal/prompt"
	"sprintsync/internal/service"
	"sprintsync/internal/session"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	factory := func(ctx context.Context, cfg *config.Config, sess *session.Manager, log *zap.Logger) (service.Service, error) {
		client, err := sprintapi.New(cfg, sess, log)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	dispatcher.SetPrompter(func(cfg *config.Config) prompt.Prompter {
		return prompt.NewLiner(cfg.HistoryPath())
	})

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
