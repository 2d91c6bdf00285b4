package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/7LayerLabs/SundaySquares/internal/notify"
	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

type QuarterWinnerResponse struct {
	Quarter string  `json:"quarter"`
	Owner   string  `json:"owner"`
	Payout  float64 `json:"payout"`
}

func handleRecordWinner(store Store, broker *Broker, notifier *notify.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quarter, err := squares.ParseQuarter(chi.URLParam(r, "quarter"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		ref := poolFrom(r)
		sess := sessionFrom(r)

		var owner string
		pool, err := store.ModifyPool(r.Context(), ref.ID, func(p *squares.Pool) error {
			owner, err = p.RecordQuarterWinner(sess.Role, quarter)
			return err
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		payouts := pool.Payouts()
		var payout float64
		switch quarter {
		case squares.QuarterQ1:
			payout = payouts.Q1
		case squares.QuarterQ2:
			payout = payouts.Q2
		case squares.QuarterQ3:
			payout = payouts.Q3
		}

		broker.Publish(ref.ID, SSEEvent{Type: eventQuarterWinner, Quarter: string(quarter), Owner: owner})
		notifier.QuarterWinner(pool.Title, string(quarter), owner, payout)

		writeJSON(w, http.StatusOK, QuarterWinnerResponse{
			Quarter: string(quarter),
			Owner:   owner,
			Payout:  payout,
		})
	}
}
