package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/arko-chat/storebridge/components/assets"
	"github.com/arko-chat/storebridge/internal/handlers"
)

func New(h *handlers.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)

	if dist := assets.Global.FS(); dist != nil {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(dist))))
	}

	r.Get("/", h.HandleShell)
	r.Get("/ws/bridge", h.HandleBridgeWS)
	r.Post("/api/intent", h.HandleIntent)

	r.Route("/sandbox", func(r chi.Router) {
		r.Use(chimw.NoCache)

		r.Get("/pay/{token}", h.HandlePaymentPage)
		r.Post("/pay/{token}/{outcome}", h.HandlePaymentOutcome)
		r.Get("/pay/{token}/qr.png", h.HandlePaymentQR)
		r.Get("/review", h.HandleReviewPage)
		r.Post("/review", h.HandleReviewSubmit)
	})

	return r
}
