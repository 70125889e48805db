package handlers

import (
	"net/http"

	"github.com/arko-chat/storebridge/components/assets"
	"github.com/arko-chat/storebridge/internal/pages"
)

// HandleShell serves the demo shell page that drives the bridge.
func (h *Handler) HandleShell(w http.ResponseWriter, r *http.Request) {
	script := assets.URL("storebridge.js")
	if script == "" {
		h.logger.Error("shell script asset missing")
		http.Error(w, "shell assets missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	h.render(w, r, http.StatusOK, pages.Shell(script))
}
