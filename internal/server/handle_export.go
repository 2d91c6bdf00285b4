package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

// handleExport downloads the full pool aggregate as a JSON attachment,
// PIN included, for offline backup. Admin only.
func handleExport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		if sess.Role != squares.RoleAdmin {
			writeDomainError(w, squares.ErrForbidden)
			return
		}

		pool := poolFrom(r).Pool
		filename := fmt.Sprintf("squares-backup-%s.json", time.Now().UTC().Format("2006-01-02"))

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(pool)
	}
}
