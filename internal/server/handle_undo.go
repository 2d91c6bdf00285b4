package server

import (
	"log/slog"
	"net/http"

	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

type UndoResponse struct {
	Squares          map[string]squares.Square `json:"squares"`
	Stats            squares.Stats             `json:"stats"`
	HistoryAvailable bool                      `json:"historyAvailable"`
}

// handleUndo restores the most recent pre-claim grid snapshot. Admin
// only; the stack is process-local, so after a restart there is nothing
// to undo.
func handleUndo(store Store, broker *Broker, history *historySet, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := poolFrom(r)
		sess := sessionFrom(r)
		if sess.Role != squares.RoleAdmin {
			writeDomainError(w, squares.ErrForbidden)
			return
		}

		snapshot, ok := history.pop(ref.ID)
		if !ok {
			writeError(w, http.StatusConflict, "nothing to undo")
			return
		}

		pool, err := store.ModifyPool(r.Context(), ref.ID, func(p *squares.Pool) error {
			p.Squares = snapshot
			return nil
		})
		if err != nil {
			// Put the snapshot back so a transient store error doesn't
			// eat an undo step.
			history.push(ref.ID, snapshot)
			writeDomainError(w, err)
			return
		}

		broker.Publish(ref.ID, SSEEvent{Type: eventSquaresRestored})
		syncDirectory(store, logger, pool)

		writeJSON(w, http.StatusOK, UndoResponse{
			Squares:          pool.Squares,
			Stats:            pool.Stats(),
			HistoryAvailable: history.len(ref.ID) > 0,
		})
	}
}
