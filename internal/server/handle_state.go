package server

import (
	"net/http"

	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

// WinnerInfo is the currently resolved winning cell, if any.
type WinnerInfo struct {
	CellID  string `json:"cellId"`
	Owner   string `json:"owner,omitempty"`
	Claimed bool   `json:"claimed"`
}

// StateResponse is the full pool snapshot plus derived figures the SPA
// renders directly.
type StateResponse struct {
	Pool             *squares.Pool   `json:"pool"`
	Role             string          `json:"role"`
	Winner           *WinnerInfo     `json:"winner"`
	Stats            squares.Stats   `json:"stats"`
	Payouts          squares.Payouts `json:"payouts"`
	DistributionSum  int             `json:"distributionSum"`
	Balanced         bool            `json:"balanced"`
	HistoryAvailable bool            `json:"historyAvailable"`
}

func handleState(store Store, history *historySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := poolFrom(r)
		pool := ref.Pool

		// The state endpoint is public; a valid session for this pool
		// upgrades what it shows.
		role := squares.RoleNone
		if token := bearerToken(r); token != "" {
			if sess, err := store.SessionFromToken(r.Context(), token); err == nil && sess.PoolID == ref.ID {
				role = sess.Role
			}
		}

		writeJSON(w, http.StatusOK, stateResponse(pool, role, history.len(ref.ID) > 0))
	}
}

// stateResponse assembles the snapshot, redacting the admin PIN for
// anyone below admin.
func stateResponse(pool *squares.Pool, role squares.Role, historyAvailable bool) StateResponse {
	view := *pool
	if role != squares.RoleAdmin {
		view.AdminPin = ""
	}

	var winner *WinnerInfo
	if id, ok := pool.WinningCell(); ok {
		winner = &WinnerInfo{CellID: id}
		if sq, ok := pool.Squares[id]; ok {
			winner.Owner = sq.Owner
			winner.Claimed = true
		}
	}

	return StateResponse{
		Pool:             &view,
		Role:             string(role),
		Winner:           winner,
		Stats:            pool.Stats(),
		Payouts:          pool.Payouts(),
		DistributionSum:  pool.PrizeDistribution.Sum(),
		Balanced:         pool.PrizeDistribution.Balanced(),
		HistoryAvailable: historyAvailable && role == squares.RoleAdmin,
	}
}
