package ws

import (
	"log/slog"
	"sync"
)

// Hub tracks connected clients per topic.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Client]struct{}
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		topics: make(map[string]map[*Client]struct{}),
		logger: logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.topics[c.Topic] == nil {
		h.topics[c.Topic] = make(map[*Client]struct{})
	}
	h.topics[c.Topic][c] = struct{}{}
	h.logger.Debug("ws register",
		"topic", c.Topic,
		"clients", len(h.topics[c.Topic]),
	)
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.topics[c.Topic]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	c.close()
	if len(clients) == 0 {
		delete(h.topics, c.Topic)
	}
	h.logger.Debug("ws unregister", "topic", c.Topic)
}

func (h *Hub) Broadcast(topic string, data []byte) {
	if data == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for c := range h.topics[topic] {
		if c.Enqueue(data) {
			sent++
			continue
		}
		h.logger.Warn("ws dropped message", "topic", topic)
	}

	h.logger.Debug("ws broadcast",
		"topic", topic,
		"recipients", sent,
	)
}

func (h *Hub) Count(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
