package server

import (
	"net/http"

	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

// AuthRequest carries the single shared credential field: players paste
// the pool code, the host pastes the admin PIN.
type AuthRequest struct {
	Code string `json:"code"`
}

type AuthResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

func handleAuth(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AuthRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ref := poolFrom(r)
		var role squares.Role
		_, err := store.ModifyPool(r.Context(), ref.ID, func(p *squares.Pool) error {
			role = p.Authenticate(req.Code)
			return nil
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if role == squares.RoleNone {
			// Generic on purpose; don't reveal which credential missed.
			writeError(w, http.StatusUnauthorized, "invalid code")
			return
		}

		token, err := store.CreateSession(r.Context(), ref.ID, role)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, AuthResponse{Token: token, Role: string(role)})
	}
}

func handleLogout(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			store.DeleteSession(r.Context(), token)
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
