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

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/cardroom/cardroom/internal/auth"
	"github.com/cardroom/cardroom/internal/evaluator"
	"github.com/cardroom/cardroom/internal/game"
	"github.com/cardroom/cardroom/internal/randutil"
	"github.com/cardroom/cardroom/internal/server"
)

// ServeCmd runs the table server.
type ServeCmd struct {
	Config   string `short:"c" default:"cardroom.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Seed     *int64 `help:"Deterministic RNG seed (optional)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}

	// Apply command line overrides
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	addr := cfg.Address()
	if c.Addr != "" {
		addr = c.Addr
	}

	logger := setupLogger(cfg.Server.LogLevel)

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	}
	rng := randutil.New(seed)

	var verifier auth.Verifier
	if cfg.Server.AuthURL != "" {
		verifier = auth.NewHTTPVerifier(cfg.Server.AuthURL, cfg.Server.AuthSecret)
		logger.Info("Seat gating enabled", "url", cfg.Server.AuthURL)
	} else {
		verifier = auth.NewNoopVerifier(cfg.Table.DefaultBuyIn)
	}

	wsServer := server.NewServer(addr, logger)
	table := game.NewTable(game.Config{
		MaxSeats:    cfg.Table.MaxSeats,
		SmallBlind:  cfg.Table.SmallBlind,
		BigBlind:    cfg.Table.BigBlind,
		TurnTimeout: cfg.TurnTimeout(),
		StartDelay:  cfg.StartDelay(),
	}, logger, quartz.NewReal(), rng, evaluator.SevenCard{}, nil)

	gameService := server.NewGameService(logger, table, verifier, wsServer)
	table.SetSink(gameService)
	wsServer.SetGameService(gameService)

	logger.Info("Starting card room",
		"addr", addr,
		"seats", cfg.Table.MaxSeats,
		"stakes", fmt.Sprintf("%d/%d", cfg.Table.SmallBlind, cfg.Table.BigBlind),
		"turnTimeout", cfg.TurnTimeout())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := wsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		return wsServer.Stop()
	})
	return g.Wait()
}

func setupLogger(level string) *log.Logger {
	logger := log.New(os.Stderr)
	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}
