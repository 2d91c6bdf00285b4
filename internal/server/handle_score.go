package server

import (
	"net/http"

	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

type ScoreRequest struct {
	HomeScore string `json:"homeScore"`
	AwayScore string `json:"awayScore"`
}

// ScoreResponse carries the re-resolved winner so the scoreboard and
// the highlighted cell update off one round trip.
type ScoreResponse struct {
	HomeScore string      `json:"homeScore"`
	AwayScore string      `json:"awayScore"`
	Winner    *WinnerInfo `json:"winner"`
}

func handleSetScore(store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScoreRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ref := poolFrom(r)
		sess := sessionFrom(r)

		pool, err := store.ModifyPool(r.Context(), ref.ID, func(p *squares.Pool) error {
			return p.SetScore(sess.Role, req.HomeScore, req.AwayScore)
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		var winner *WinnerInfo
		if id, ok := pool.WinningCell(); ok {
			winner = &WinnerInfo{CellID: id}
			if sq, ok := pool.Squares[id]; ok {
				winner.Owner = sq.Owner
				winner.Claimed = true
			}
		}

		broker.Publish(ref.ID, SSEEvent{Type: eventScoreUpdated})

		writeJSON(w, http.StatusOK, ScoreResponse{
			HomeScore: pool.HomeScore,
			AwayScore: pool.AwayScore,
			Winner:    winner,
		})
	}
}
