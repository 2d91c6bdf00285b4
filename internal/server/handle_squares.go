package server

import (
	"log/slog"
	"maps"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/7LayerLabs/SundaySquares/internal/notify"
	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

// ClaimRequest is the body for POST /api/pools/{code}/squares. The
// isPaid/isPending flags are honored for admin sessions only.
type ClaimRequest struct {
	Row           int    `json:"row"`
	Col           int    `json:"col"`
	Owner         string `json:"owner"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
	IsPaid        bool   `json:"isPaid,omitempty"`
	IsPending     bool   `json:"isPending,omitempty"`
}

type ClaimResponse struct {
	Square squares.Square `json:"square"`
	Stats  squares.Stats  `json:"stats"`
}

func handleClaimSquare(store Store, broker *Broker, history *historySet, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ClaimRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ref := poolFrom(r)
		sess := sessionFrom(r)

		var forced *squares.ForcedStatus
		if sess.Role == squares.RoleAdmin && (req.IsPaid || req.IsPending) {
			forced = &squares.ForcedStatus{IsPaid: req.IsPaid, IsPending: req.IsPending}
		}

		var snapshot map[string]squares.Square
		pool, err := store.ModifyPool(r.Context(), ref.ID, func(p *squares.Pool) error {
			// Copy before ClaimCell mutates the map in place.
			snapshot = maps.Clone(p.Squares)
			return p.ClaimCell(sess.Role, req.Row, req.Col, req.Owner, squares.PaymentMethod(req.PaymentMethod), forced)
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		// The pre-claim grid only enters the undo history once the
		// write has committed.
		history.push(ref.ID, snapshot)

		id := squares.CellID(req.Row, req.Col)
		sq := pool.Squares[id]
		broker.Publish(ref.ID, SSEEvent{Type: eventSquareClaimed, CellID: id, Owner: sq.Owner})
		syncDirectory(store, logger, pool)

		writeJSON(w, http.StatusOK, ClaimResponse{Square: sq, Stats: pool.Stats()})
	}
}

func handleDeleteSquare(store Store, broker *Broker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, col, err := squares.ParseCellID(chi.URLParam(r, "cellID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		ref := poolFrom(r)
		sess := sessionFrom(r)

		pool, err := store.ModifyPool(r.Context(), ref.ID, func(p *squares.Pool) error {
			return p.DeleteCell(sess.Role, row, col)
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		broker.Publish(ref.ID, SSEEvent{Type: eventSquareDeleted, CellID: squares.CellID(row, col)})
		syncDirectory(store, logger, pool)

		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "stats": pool.Stats()})
	}
}

// VerificationRequest overrides the payment flags on a claimed square.
type VerificationRequest struct {
	IsPaid    bool `json:"isPaid"`
	IsPending bool `json:"isPending"`
}

func handleSetVerification(store Store, broker *Broker, logger *slog.Logger, notifier *notify.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, col, err := squares.ParseCellID(chi.URLParam(r, "cellID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		var req VerificationRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ref := poolFrom(r)
		sess := sessionFrom(r)

		pool, err := store.ModifyPool(r.Context(), ref.ID, func(p *squares.Pool) error {
			return p.SetVerification(sess.Role, row, col, req.IsPaid, req.IsPending)
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		id := squares.CellID(row, col)
		sq := pool.Squares[id]
		broker.Publish(ref.ID, SSEEvent{Type: eventPaymentVerified, CellID: id, Owner: sq.Owner})
		syncDirectory(store, logger, pool)
		if req.IsPaid {
			notifier.PaymentVerified(pool.Title, sq.Owner, id)
		}

		writeJSON(w, http.StatusOK, ClaimResponse{Square: sq, Stats: pool.Stats()})
	}
}
