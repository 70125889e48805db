// Package mobile is the gomobile entry point. The host registers its store
// SDK wrappers, starts the bridge and then forwards shell commands and
// deep-link intents.
package mobile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/arko-chat/storebridge/internal/app"
	"github.com/arko-chat/storebridge/internal/bridge"
	"github.com/arko-chat/storebridge/internal/logger"
	"github.com/arko-chat/storebridge/internal/service"
)

var (
	mu      sync.Mutex
	current *app.App
)

func RegisterNative(review bridge.NativeReview, billing bridge.NativeBillingFactory) {
	bridge.Register(review, billing)
}

// Start launches the bridge and its local server. optionsJSON holds the
// bridge options and may be empty. It returns the server base URL.
func Start(optionsJSON string) (string, error) {
	mu.Lock()
	defer mu.Unlock()

	if current != nil {
		return "", fmt.Errorf("bridge already running")
	}

	review, billing, err := bridge.Safe()
	if err != nil {
		return "", fmt.Errorf("call RegisterNative before Start: %w", err)
	}

	var opts service.Options
	if optionsJSON != "" {
		if err := json.Unmarshal([]byte(optionsJSON), &opts); err != nil {
			return "", fmt.Errorf("parse options: %w", err)
		}
	}

	slogger := logger.New("debug", "text")
	a := app.NewNative(
		bridge.NewReviewAdapter(review),
		bridge.NewBillingFactoryAdapter(billing),
		opts,
		slogger,
	)
	addr, err := a.Start("127.0.0.1:0")
	if err != nil {
		return "", err
	}
	current = a
	return addr, nil
}

func running() (*app.App, error) {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		return nil, fmt.Errorf("bridge not started")
	}
	return current, nil
}

// Execute runs a shell command. It returns false for unknown actions, in
// which case cb is never called.
func Execute(action, argsJSON string, cb bridge.NativeCallback) bool {
	a, err := running()
	if err != nil {
		cb.Error(err.Error())
		return true
	}
	return a.Bridge().Execute(context.Background(), action, json.RawMessage(argsJSON), bridge.CallbackAdapter{Native: cb})
}

// OnNewIntent forwards a deep link delivered to the host activity.
func OnNewIntent(intentJSON string) error {
	a, err := running()
	if err != nil {
		return err
	}
	intent, err := bridge.DecodeIntent(intentJSON)
	if err != nil {
		return err
	}
	a.Handler().ForwardIntent(intent)
	return nil
}

func Stop() {
	mu.Lock()
	defer mu.Unlock()

	if current != nil {
		current.Close()
		current = nil
	}
}
