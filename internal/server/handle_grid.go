package server

import (
	"log/slog"
	"net/http"

	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

type GridLockResponse struct {
	IsGridLocked bool `json:"isGridLocked"`
}

func handleToggleGridLock(store Store, broker *Broker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := poolFrom(r)
		sess := sessionFrom(r)

		pool, err := store.ModifyPool(r.Context(), ref.ID, func(p *squares.Pool) error {
			return p.ToggleGridLock(sess.Role)
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		broker.Publish(ref.ID, SSEEvent{Type: eventGridLock, Locked: pool.IsGridLocked})
		syncDirectory(store, logger, pool)

		writeJSON(w, http.StatusOK, GridLockResponse{IsGridLocked: pool.IsGridLocked})
	}
}

type RollNumbersResponse struct {
	HomeNumbers []int `json:"homeNumbers"`
	AwayNumbers []int `json:"awayNumbers"`
	IsLocked    bool  `json:"isLocked"`
}

func handleRollNumbers(store Store, broker *Broker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := poolFrom(r)
		sess := sessionFrom(r)

		pool, err := store.ModifyPool(r.Context(), ref.ID, func(p *squares.Pool) error {
			return p.RollNumbers(sess.Role)
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		broker.Publish(ref.ID, SSEEvent{Type: eventNumbersRolled})
		syncDirectory(store, logger, pool)

		writeJSON(w, http.StatusOK, RollNumbersResponse{
			HomeNumbers: pool.HomeNumbers,
			AwayNumbers: pool.AwayNumbers,
			IsLocked:    pool.IsLocked,
		})
	}
}
