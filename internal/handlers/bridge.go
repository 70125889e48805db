package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/arko-chat/storebridge/internal/models"
	"github.com/arko-chat/storebridge/internal/ws"
)

const (
	commandRate  = 50
	commandBurst = 100
)

// upgrader keeps gorilla's same-host origin check: only pages served by this
// server (or clients sending no Origin) may drive the bridge.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wsCallback delivers a command result as a Reply frame.
type wsCallback struct {
	h      *Handler
	client *ws.Client
	id     string
	action string
}

func (c wsCallback) Success(payload any) {
	out, err := ws.SuccessReply(c.id, payload)
	if err != nil {
		c.h.logger.Error("encode bridge reply", "action", c.action, "err", err)
		out = ws.ErrorReply(c.id, "Failed to encode the result of "+c.action)
	}
	c.send(out)
}

func (c wsCallback) Error(message string) {
	c.send(ws.ErrorReply(c.id, message))
}

func (c wsCallback) send(out []byte) {
	if !c.client.Enqueue(out) {
		c.h.logger.Warn("bridge reply dropped", "action", c.action, "id", c.id)
	}
}

func (h *Handler) HandleBridgeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "err", err)
		return
	}

	client := ws.NewClient(h.hub, conn, ws.TopicBridge)
	h.hub.Register(client)
	go client.WritePump()

	ctx := r.Context()
	limiter := rate.NewLimiter(rate.Limit(commandRate), commandBurst)
	client.ReadPump(func(raw []byte) {
		var req ws.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			h.logger.Debug("ws bad frame", "err", err)
			return
		}

		cb := wsCallback{h: h, client: client, id: req.ID, action: req.Action}
		if !limiter.Allow() {
			cb.Error("Too many requests")
			return
		}
		if !h.bridge.Execute(ctx, req.Action, req.Args, cb) {
			cb.Error("Invalid action: " + req.Action)
		}
	})
}

// HandleIntent accepts a deep link from outside the shell, for example from
// a URL handler registered with the desktop.
func (h *Handler) HandleIntent(w http.ResponseWriter, r *http.Request) {
	var intent models.Intent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&intent); err != nil {
		http.Error(w, "bad intent", http.StatusBadRequest)
		return
	}
	if intent.Data == "" {
		http.Error(w, "intent data is required", http.StatusBadRequest)
		return
	}
	h.ForwardIntent(intent)
	w.WriteHeader(http.StatusNoContent)
}
