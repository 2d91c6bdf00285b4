package server

import (
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const ownerCookieName = "owner_session"

// OwnerLoginRequest is the request body for POST /api/owner/login. The
// owner is the cross-pool operator; their PIN is seeded from config and
// bcrypt-hashed at rest.
type OwnerLoginRequest struct {
	Pin string `json:"pin"`
}

func handleOwnerLogin(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OwnerLoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Pin == "" {
			writeError(w, http.StatusBadRequest, "pin is required")
			return
		}

		ownerID, hash, err := store.OwnerPinHash(r.Context())
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if err := bcrypt.CompareHashAndPassword(hash, []byte(req.Pin)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		token, err := store.CreateOwnerSession(r.Context(), ownerID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     ownerCookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(7 * 24 * time.Hour / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func handleOwnerLogout(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(ownerCookieName); err == nil && cookie.Value != "" {
			store.DeleteOwnerSession(r.Context(), cookie.Value)
		}

		http.SetCookie(w, &http.Cookie{
			Name:     ownerCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// OwnerPoolsResponse is the dashboard listing: every activated pool
// with its mirrored claim stats.
type OwnerPoolsResponse struct {
	Pools []DirectoryEntry `json:"pools"`
}

func handleOwnerPools(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := store.ListDirectory(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if entries == nil {
			entries = []DirectoryEntry{}
		}
		writeJSON(w, http.StatusOK, OwnerPoolsResponse{Pools: entries})
	}
}
