package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/7LayerLabs/SundaySquares/internal/config"
	"github.com/7LayerLabs/SundaySquares/internal/database"
	"github.com/7LayerLabs/SundaySquares/internal/notify"
	"github.com/7LayerLabs/SundaySquares/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	// Local development reads .env; missing file is fine.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	store, err := server.NewDocStore(ctx, db)
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.OwnerPin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing owner pin: %w", err)
	}
	if err := store.SeedOwner(ctx, hash); err != nil {
		return fmt.Errorf("seeding owner: %w", err)
	}
	if err := store.SeedDemo(ctx); err != nil {
		return fmt.Errorf("seeding demo pool: %w", err)
	}

	// --- Telegram (optional) ---
	notifier, err := notify.New(cfg.TelegramToken, cfg.TelegramChatID, logger)
	if err != nil {
		return fmt.Errorf("connecting to telegram: %w", err)
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, store, db, notifier, cfg.UndoDepth, cfg.SPADir)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
