package service

import (
	"log/slog"
	"sync/atomic"
)

// Callback receives the terminal result of one command. A nil payload means
// an empty success.
type Callback interface {
	Success(payload any)
	Error(message string)
}

type CallbackFuncs struct {
	OnSuccess func(payload any)
	OnError   func(message string)
}

func (c CallbackFuncs) Success(payload any) {
	if c.OnSuccess != nil {
		c.OnSuccess(payload)
	}
}

func (c CallbackFuncs) Error(message string) {
	if c.OnError != nil {
		c.OnError(message)
	}
}

type onceCallback struct {
	inner  Callback
	action string
	logger *slog.Logger
	done   atomic.Bool
}

// Once wraps cb so that only the first delivery reaches it. Later deliveries
// are dropped with a warning.
func Once(cb Callback, action string, logger *slog.Logger) Callback {
	if oc, ok := cb.(*onceCallback); ok {
		return oc
	}
	return &onceCallback{inner: cb, action: action, logger: logger}
}

func (c *onceCallback) Success(payload any) {
	if !c.done.CompareAndSwap(false, true) {
		c.logger.Warn("attempted to send a second callback",
			"action", c.action,
			"kind", "success",
		)
		return
	}
	c.inner.Success(payload)
}

func (c *onceCallback) Error(message string) {
	if !c.done.CompareAndSwap(false, true) {
		c.logger.Warn("attempted to send a second callback",
			"action", c.action,
			"kind", "error",
			"message", message,
		)
		return
	}
	c.inner.Error(message)
}
