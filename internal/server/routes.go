package server

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/7LayerLabs/SundaySquares/internal/notify"
)

func addRoutes(r chi.Router, logger *slog.Logger, store Store, db *sql.DB, notifier *notify.Notifier, history *historySet, spaDir string) {
	broker := NewBroker()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Sunday Squares API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db))

	r.Post("/api/pools", handleCreatePool(store))

	// Pool routes — {code} resolved by poolMiddleware.
	r.Route("/api/pools/{code}", func(r chi.Router) {
		r.Use(poolMiddleware(store))

		// Public within a pool: join, activation, live state.
		r.Post("/auth", handleAuth(store))
		r.Post("/activate", handleActivate(store))
		r.Post("/payment", handlePaymentReturn(store))
		r.Get("/state", handleState(store, history))
		r.Get("/events", handleEvents(broker))

		// Session-gated; role checks live in the domain layer.
		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware(store))

			r.Post("/logout", handleLogout(store))
			r.Post("/squares", handleClaimSquare(store, broker, history, logger))
			r.Delete("/squares/{cellID}", handleDeleteSquare(store, broker, logger))
			r.Put("/squares/{cellID}/verification", handleSetVerification(store, broker, logger, notifier))
			r.Post("/grid/lock", handleToggleGridLock(store, broker, logger))
			r.Post("/grid/roll", handleRollNumbers(store, broker, logger))
			r.Put("/score", handleSetScore(store, broker))
			r.Post("/winners/{quarter}", handleRecordWinner(store, broker, notifier))
			r.Put("/settings/payments", handleSetPaymentSettings(store, logger))
			r.Put("/settings/distribution", handleSetDistribution(store))
			r.Put("/settings/title", handleSetTitle(store))
			r.Put("/settings/pin", handleSetPin(store))
			r.Post("/code/rotate", handleRotateCode(store))
			r.Post("/undo", handleUndo(store, broker, history, logger))
			r.Post("/reset", handleReset(store, broker, history, logger))
			r.Post("/clear", handleClearSquares(store, broker, logger))
			r.Get("/export", handleExport())
		})
	})

	// Owner dashboard — cookie auth, orthogonal to pool sessions.
	r.Post("/api/owner/login", handleOwnerLogin(store))
	r.Post("/api/owner/logout", handleOwnerLogout(store))
	r.Group(func(r chi.Router) {
		r.Use(ownerAuthMiddleware(store))
		r.Get("/api/owner/pools", handleOwnerPools(store))
	})

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
