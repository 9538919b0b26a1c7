package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"workdesk/internal/logger"
	"workdesk/internal/model"
	"workdesk/internal/monitor"
	"workdesk/internal/output"
	"workdesk/internal/server"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var progressPrefix = color.New(color.FgHiBlue).Sprint("  →")

func listCommand(ctx context.Context, cmd *cli.Command) error {
	ctx, err := setupLogger(ctx, cmd, logger.ConsoleFormat)
	if err != nil {
		return err
	}
	lgr := logger.FromContext(ctx)

	format, err := output.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	var filter *model.Attention
	if name := cmd.String("attention"); name != "" {
		attention, err := model.ParseAttention(name)
		if err != nil {
			return err
		}
		filter = &attention
	}
	renderer, err := output.New(os.Stdout, format, cmd.String("template"))
	if err != nil {
		return err
	}

	cfg, creds, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}
	aggregator, tracker, err := buildAggregator(cfg, creds)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var progress func(string)
	if !cmd.Bool("quiet") {
		progress = func(msg string) {
			fmt.Fprintf(os.Stderr, "%s %s\n", progressPrefix, msg)
		}
	}

	items, err := aggregator.Aggregate(ctx, progress)
	if err != nil {
		return fmt.Errorf("failed to build worklist: %w", err)
	}

	// The header is best effort; the worklist is still printed without it
	displayName, err := tracker.CurrentUserName(ctx)
	if err != nil {
		lgr.Warn("Failed to resolve tracker user", zap.Error(err))
	}
	sprint, err := tracker.ActiveSprint(ctx)
	if err != nil {
		lgr.Warn("Failed to resolve active sprint", zap.Error(err))
	}

	if filter != nil {
		items = model.FilterByAttention(items, *filter)
	}

	renderer.Header(displayName, sprint)
	return renderer.Render(items)
}

func serveCommand(ctx context.Context, cmd *cli.Command) error {
	ctx, err := setupLogger(ctx, cmd, logger.JSONFormat)
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)

	log.Info("Starting workdesk server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	cfg, creds, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}
	aggregator, _, err := buildAggregator(cfg, creds)
	if err != nil {
		return err
	}

	serverConfig := server.Config{
		Port:   cfg.Server.Port,
		APIKey: cfg.APIKey(),
	}
	if cmd.Int("port") != 0 {
		serverConfig.Port = cmd.Int("port")
		log.Info("Overriding port from CLI flag", zap.Int("port", serverConfig.Port))
	}
	if cmd.String("api-key") != "" {
		serverConfig.APIKey = cmd.String("api-key")
		log.Info("Overriding API key from CLI flag")
	}

	interval := cfg.Settings.RefreshEvery()
	if cmd.Duration("interval") > 0 {
		interval = cmd.Duration("interval")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mon := monitor.New(aggregator, monitor.Config{Interval: interval})
	srv := server.NewServer(ctx, mon, serverConfig)

	if err := srv.Start(ctx); err != nil {
		log.Error("Failed to start HTTP server", zap.Error(err))
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	log.Info("Worklist HTTP server started", zap.String("url", srv.GetURL()))

	// Graceful shutdown for HTTP server
	defer func() {
		if shutdownErr := srv.Stop(logger.WithLogger(context.Background(), log)); shutdownErr != nil {
			log.Error("Failed to stop HTTP server", zap.Error(shutdownErr))
		}
	}()

	monitorDone := make(chan error, 1)
	go func() {
		monitorDone <- mon.Start(ctx)
	}()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		log.Info("Shutting down gracefully", zap.String("signal", sig.String()))
		cancel()
		<-monitorDone
	case err := <-monitorDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Monitor stopped", zap.Error(err))
			return err
		}
	}

	log.Info("Workdesk server shutdown completed")
	return nil
}
