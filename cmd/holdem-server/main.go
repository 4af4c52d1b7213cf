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

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdemarena/internal/server"
)

var CLI struct {
	Config   string `short:"c" default:"holdem-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Bind address (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := server.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		ctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	addr := cfg.GetServerAddress()
	if CLI.Addr != "" {
		addr = CLI.Addr
	}

	clock := server.NewActionClock(quartz.NewReal(),
		time.Duration(cfg.Server.ActionTimeout)*time.Second, logger)
	defer clock.Stop()

	registry := server.NewRegistry(clock, logger)
	defer registry.Close()

	svc := server.NewService(registry, clock, logger)

	// Tables declared in the config exist before the first client connects.
	for _, tableConfig := range cfg.Tables {
		var table *server.Table
		if tableConfig.Tournament != nil {
			table, err = registry.Create(tableConfig.Name, tableConfig.GameConfig(), tableConfig.StartingChips, tableConfig.Tournament.Structure())
		} else {
			table, err = registry.Create(tableConfig.Name, tableConfig.GameConfig(), tableConfig.StartingChips, nil)
		}
		if err != nil {
			logger.Error("failed to create table", "table", tableConfig.Name, "error", err)
			ctx.Exit(1)
		}
		logger.Info("table ready", "id", table.ID, "name", tableConfig.Name,
			"stakes", fmt.Sprintf("%d/%d", tableConfig.SmallBlind, tableConfig.BigBlind))
	}

	httpServer := &http.Server{
		Addr:    addr,
		Handler: svc.Handler(),
	}

	logger.Info("starting holdem server", "addr", addr, "tables", len(cfg.Tables))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "error", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
