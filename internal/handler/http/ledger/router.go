package ledger_http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go.uber.org/zap"

	"github.com/CMGeorges/p2p-app-public/internal/app/ledger"
)

func RegisterRoutes(r chi.Router, s ledger.LedgerService, l *zap.Logger) {
	handler := NewLedgerHandler(s, l.With(zap.String("component", "LedgerHTTPHandler")))

	r.Route("/health", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("P2P payment service is healthy!"))
		})
	})

	r.Post("/users", handler.RegisterHandler)
	r.Post("/login", handler.LoginHandler)
	r.Get("/users/{username}", handler.GetAccountHandler)
	r.Get("/feed", handler.FeedHandler)
	r.Get("/pools", handler.ListPoolsHandler)
	r.Get("/pools/{id}", handler.GetPoolHandler)

	r.Group(func(r chi.Router) {
		r.Use(handler.RequireAuth)
		r.Post("/deposit", handler.DepositHandler)
		r.Post("/transfer", handler.TransferHandler)
		r.Post("/pools", handler.CreatePoolHandler)
		r.Post("/pools/{id}/contributions", handler.ContributeHandler)
	})
}
