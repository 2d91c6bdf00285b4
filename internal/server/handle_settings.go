package server

import (
	"log/slog"
	"net/http"

	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

// PaymentSettingsRequest replaces the host's collection handles and the
// square price in one shot, mirroring the settings form.
type PaymentSettingsRequest struct {
	Venmo          string `json:"venmo"`
	CashApp        string `json:"cashApp"`
	Cash           string `json:"cash"`
	PricePerSquare string `json:"pricePerSquare"`
}

func handleSetPaymentSettings(store Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PaymentSettingsRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ref := poolFrom(r)
		sess := sessionFrom(r)

		pool, err := store.ModifyPool(r.Context(), ref.ID, func(p *squares.Pool) error {
			return p.SetPaymentSettings(sess.Role, squares.PaymentSettings{
				Venmo:          req.Venmo,
				CashApp:        req.CashApp,
				Cash:           req.Cash,
				PricePerSquare: req.PricePerSquare,
			})
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		// A price change revalues the pot, so the directory mirror must
		// refresh even though no claim moved.
		syncDirectory(store, logger, pool)

		writeJSON(w, http.StatusOK, map[string]any{
			"paymentSettings": pool.PaymentSettings,
			"stats":           pool.Stats(),
		})
	}
}

// DistributionResponse echoes the saved split and flags an off-100 sum
// so the SPA can warn without blocking.
type DistributionResponse struct {
	PrizeDistribution squares.PrizeDistribution `json:"prizeDistribution"`
	Sum               int                       `json:"sum"`
	Balanced          bool                      `json:"balanced"`
}

func handleSetDistribution(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req squares.PrizeDistribution
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ref := poolFrom(r)
		sess := sessionFrom(r)

		pool, err := store.ModifyPool(r.Context(), ref.ID, func(p *squares.Pool) error {
			return p.SetPrizeDistribution(sess.Role, req)
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, DistributionResponse{
			PrizeDistribution: pool.PrizeDistribution,
			Sum:               pool.PrizeDistribution.Sum(),
			Balanced:          pool.PrizeDistribution.Balanced(),
		})
	}
}

type TitleRequest struct {
	Title    string `json:"title"`
	HomeTeam string `json:"homeTeam,omitempty"`
	AwayTeam string `json:"awayTeam,omitempty"`
}

func handleSetTitle(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TitleRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ref := poolFrom(r)
		sess := sessionFrom(r)

		pool, err := store.ModifyPool(r.Context(), ref.ID, func(p *squares.Pool) error {
			if err := p.SetTitle(sess.Role, req.Title); err != nil {
				return err
			}
			return p.SetTeams(sess.Role, req.HomeTeam, req.AwayTeam)
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"title":    pool.Title,
			"homeTeam": pool.HomeTeam,
			"awayTeam": pool.AwayTeam,
		})
	}
}

type PinRequest struct {
	Pin string `json:"pin"`
}

func handleSetPin(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PinRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ref := poolFrom(r)
		sess := sessionFrom(r)

		_, err := store.ModifyPool(r.Context(), ref.ID, func(p *squares.Pool) error {
			return p.SetAdminPin(sess.Role, req.Pin)
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

type RotateCodeResponse struct {
	PoolCode string `json:"poolCode"`
}

// handleRotateCode regenerates the join code. Player links using the
// old code die; the host's session survives because sessions are keyed
// by pool id, not code.
func handleRotateCode(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := poolFrom(r)
		sess := sessionFrom(r)

		pool, err := store.ModifyPool(r.Context(), ref.ID, func(p *squares.Pool) error {
			_, err := p.RotateCode(sess.Role)
			return err
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, RotateCodeResponse{PoolCode: pool.PoolCode})
	}
}
