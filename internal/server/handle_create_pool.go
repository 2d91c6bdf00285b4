package server

import (
	"net/http"
	"strings"

	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

// CreatePoolRequest is the request body for POST /api/pools.
type CreatePoolRequest struct {
	Title          string `json:"title"`
	AdminPin       string `json:"adminPin"`
	PricePerSquare string `json:"pricePerSquare,omitempty"`
}

// CreatePoolResponse returns the join code the host shares with players.
type CreatePoolResponse struct {
	PoolCode string `json:"poolCode"`
	Title    string `json:"title"`
}

func handleCreatePool(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePoolRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		pool, err := squares.New(req.Title, req.AdminPin)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if price := strings.TrimSpace(req.PricePerSquare); price != "" {
			pool.PaymentSettings.PricePerSquare = price
		}

		if _, err := store.CreatePool(r.Context(), pool); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, CreatePoolResponse{
			PoolCode: pool.PoolCode,
			Title:    pool.Title,
		})
	}
}
