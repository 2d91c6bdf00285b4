package server

import (
	"log/slog"
	"net/http"

	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

// handleReset wipes the game back to a claimable grid: numbers, squares,
// scores, winners, and locks all go. The undo history is dropped and
// every session for the pool is revoked, so everyone rejoins fresh.
func handleReset(store Store, broker *Broker, history *historySet, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := poolFrom(r)
		sess := sessionFrom(r)

		pool, err := store.ModifyPool(r.Context(), ref.ID, func(p *squares.Pool) error {
			return p.Reset(sess.Role)
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		history.drop(ref.ID)
		if err := store.DeletePoolSessions(r.Context(), ref.ID); err != nil {
			logger.Error("revoking pool sessions", "pool", pool.PoolCode, "error", err)
		}

		broker.Publish(ref.ID, SSEEvent{Type: eventPoolReset})
		syncDirectory(store, logger, pool)

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// handleClearSquares wipes claims only, keeping numbers and lock state.
func handleClearSquares(store Store, broker *Broker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := poolFrom(r)
		sess := sessionFrom(r)

		pool, err := store.ModifyPool(r.Context(), ref.ID, func(p *squares.Pool) error {
			return p.ClearSquares(sess.Role)
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		broker.Publish(ref.ID, SSEEvent{Type: eventPoolReset})
		syncDirectory(store, logger, pool)

		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "stats": pool.Stats()})
	}
}
