package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain sentinels onto HTTP statuses so handlers
// can forward ModifyPool errors without per-handler switch blocks.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "pool not found")
	case errors.Is(err, squares.ErrForbidden):
		writeError(w, http.StatusForbidden, "admin access required")
	case errors.Is(err, squares.ErrPoolLocked):
		writeError(w, http.StatusConflict, "the pool is locked")
	case errors.Is(err, squares.ErrCellTaken):
		writeError(w, http.StatusConflict, "that square is already taken")
	case errors.Is(err, squares.ErrGridUnlocked):
		writeError(w, http.StatusConflict, "lock the grid before rolling numbers")
	case errors.Is(err, squares.ErrNoSquare):
		writeError(w, http.StatusNotFound, "square is not claimed")
	case errors.Is(err, squares.ErrNoWinner):
		writeError(w, http.StatusConflict, "no winner for the current score")
	case errors.Is(err, squares.ErrUnclaimedWinner):
		writeError(w, http.StatusConflict, "the winning square is unclaimed")
	case errors.Is(err, squares.ErrCellOutOfRange),
		errors.Is(err, squares.ErrEmptyOwner),
		errors.Is(err, squares.ErrNoPaymentMethod),
		errors.Is(err, squares.ErrBadMethod),
		errors.Is(err, squares.ErrBadPin),
		errors.Is(err, squares.ErrBadQuarter),
		errors.Is(err, squares.ErrEmptyTitle):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
