package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

// syncDirectory mirrors a pool's claim stats into the owner directory.
// Fire-and-forget: it runs on its own context after the pool write has
// committed, and a failure is logged, never surfaced to the player.
func syncDirectory(store Store, logger *slog.Logger, p *squares.Pool) {
	code := p.PoolCode
	stats := p.Stats()
	price := p.PaymentSettings.PricePerSquare
	locked := p.IsLocked

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := store.UpdateDirectoryStats(ctx, code, DirectoryStats{
			SquaresClaimed: stats.TotalClaimed,
			SquaresPaid:    stats.TotalPaid,
			TotalPot:       stats.TotalPot,
			PricePerSquare: price,
			IsLocked:       locked,
		})
		if err != nil {
			logger.Error("directory sync failed", "pool", code, "error", err)
		}
	}()
}
