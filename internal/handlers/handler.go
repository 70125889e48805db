package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/arko-chat/storebridge/internal/models"
	"github.com/arko-chat/storebridge/internal/pages"
	"github.com/arko-chat/storebridge/internal/sandbox"
	"github.com/arko-chat/storebridge/internal/service"
	"github.com/arko-chat/storebridge/internal/ws"
)

type Handler struct {
	bridge  *service.StoreBridge
	sandbox *sandbox.Sandbox
	hub     *ws.Hub
	logger  *slog.Logger
}

// New wires the HTTP surface. sb may be nil when the bridge talks to a real
// store, in which case the sandbox pages answer 404.
func New(bridge *service.StoreBridge, sb *sandbox.Sandbox, hub *ws.Hub, logger *slog.Logger) *Handler {
	return &Handler{bridge: bridge, sandbox: sb, hub: hub, logger: logger}
}

// ForwardIntent hands a deep link to the billing client and tells connected
// shells about it.
func (h *Handler) ForwardIntent(intent models.Intent) {
	h.bridge.OnNewIntent(intent)
	h.hub.Broadcast(ws.TopicBridge, ws.EventMessage("intent", intent))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		h.logger.Error("render failed", "path", r.URL.Path, "err", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, sandbox.ErrPaymentExpired):
		return http.StatusGone
	case errors.Is(err, sandbox.ErrPurchaseNotFound),
		errors.Is(err, sandbox.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, sandbox.ErrInvalidState):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *Handler) serverError(
	w http.ResponseWriter,
	r *http.Request,
	err error,
) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("handler error", "path", r.URL.Path, "err", err)
		h.render(w, r, status, pages.Message("Something went wrong", "The sandbox could not handle this request."))
		return
	}
	h.logger.Warn("request rejected", "path", r.URL.Path, "status", status, "err", err)

	text := "This payment link is no longer valid."
	if status == http.StatusConflict {
		text = "This payment has already been completed."
	}
	h.render(w, r, status, pages.Message(http.StatusText(status), text))
}

func (h *Handler) requireSandbox(w http.ResponseWriter, r *http.Request) bool {
	if h.sandbox == nil {
		http.NotFound(w, r)
		return false
	}
	return true
}
