package server

import (
	"net/http"
	"strings"

	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

// ActivateRequest carries the purchase key from the host's receipt.
type ActivateRequest struct {
	LicenseKey string `json:"licenseKey"`
}

type ActivateResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	PoolCode string `json:"poolCode"`
}

// handleActivate verifies the license key format, records the pool in
// the owner directory, marks the pool paid, and grants the host an
// admin session in one step.
func handleActivate(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ActivateRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		key := strings.ToUpper(strings.TrimSpace(req.LicenseKey))
		if !squares.ValidLicenseKey(key) {
			writeError(w, http.StatusBadRequest, "invalid license key format")
			return
		}

		ref := poolFrom(r)
		pool, err := store.ModifyPool(r.Context(), ref.ID, func(p *squares.Pool) error {
			p.Activate()
			return nil
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		stats := pool.Stats()
		err = store.UpsertDirectory(r.Context(), DirectoryEntry{
			PoolCode:   pool.PoolCode,
			Title:      pool.Title,
			LicenseKey: key,
			CreatedAt:  pool.CreatedAt,
			DirectoryStats: DirectoryStats{
				SquaresClaimed: stats.TotalClaimed,
				SquaresPaid:    stats.TotalPaid,
				TotalPot:       stats.TotalPot,
				PricePerSquare: pool.PaymentSettings.PricePerSquare,
				IsLocked:       pool.IsLocked,
			},
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		token, err := store.CreateSession(r.Context(), ref.ID, squares.RoleAdmin)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, ActivateResponse{
			Token:    token,
			Role:     string(squares.RoleAdmin),
			PoolCode: pool.PoolCode,
		})
	}
}

// PaymentReturnRequest consumes the checkout redirect: success activates
// the pool, cancelled changes nothing.
type PaymentReturnRequest struct {
	Status string `json:"status"`
}

func handlePaymentReturn(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PaymentReturnRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		switch strings.ToLower(req.Status) {
		case "success":
		case "cancelled", "canceled":
			writeError(w, http.StatusPaymentRequired, "checkout was cancelled, the pool is not active")
			return
		default:
			writeError(w, http.StatusBadRequest, "status must be success or cancelled")
			return
		}

		ref := poolFrom(r)
		pool, err := store.ModifyPool(r.Context(), ref.ID, func(p *squares.Pool) error {
			p.Activate()
			return nil
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		token, err := store.CreateSession(r.Context(), ref.ID, squares.RoleAdmin)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, ActivateResponse{
			Token:    token,
			Role:     string(squares.RoleAdmin),
			PoolCode: pool.PoolCode,
		})
	}
}
