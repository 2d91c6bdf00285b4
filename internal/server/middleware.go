package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

type ctxKey int

const (
	ctxKeyPool ctxKey = iota
	ctxKeySession
	ctxKeyOwner
)

// poolRef is what poolMiddleware resolves from the {code} URL param: a
// read snapshot plus the internal id handlers mutate through.
type poolRef struct {
	ID   string
	Pool *squares.Pool
}

func poolMiddleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := strings.ToUpper(chi.URLParam(r, "code"))
			if code == "" {
				writeError(w, http.StatusNotFound, "pool not found")
				return
			}

			id, pool, err := store.GetPool(r.Context(), code)
			if err != nil {
				writeError(w, http.StatusNotFound, "pool not found")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyPool, poolRef{ID: id, Pool: pool})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionMiddleware requires a Bearer token bound to the pool resolved
// by poolMiddleware. A token from another pool is treated as absent.
func sessionMiddleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			sess, err := store.SessionFromToken(r.Context(), token)
			if err != nil || sess.PoolID != poolFrom(r).ID {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ownerAuthMiddleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(ownerCookieName)
			if err != nil || cookie.Value == "" {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			sess, err := store.OwnerFromSession(r.Context(), cookie.Value)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyOwner, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
		return tok
	}
	// SSE clients can't set headers; allow the token as a query param.
	return r.URL.Query().Get("token")
}

func poolFrom(r *http.Request) poolRef {
	return r.Context().Value(ctxKeyPool).(poolRef)
}

func sessionFrom(r *http.Request) poolSession {
	return r.Context().Value(ctxKeySession).(poolSession)
}
