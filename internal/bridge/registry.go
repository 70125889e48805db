package bridge

import (
	"errors"
	"sync"
)

var ErrNoNative = errors.New("bridge: no native providers registered")

var (
	mu      sync.RWMutex
	review  NativeReview
	billing NativeBillingFactory
)

// Register is called once from native (Swift/Kotlin) before Start().
func Register(r NativeReview, b NativeBillingFactory) {
	mu.Lock()
	defer mu.Unlock()
	review = r
	billing = b
}

// Safe returns the registered providers, or ErrNoNative before Register.
func Safe() (NativeReview, NativeBillingFactory, error) {
	mu.RLock()
	defer mu.RUnlock()
	if review == nil || billing == nil {
		return nil, nil, ErrNoNative
	}
	return review, billing, nil
}

func reset() {
	mu.Lock()
	defer mu.Unlock()
	review = nil
	billing = nil
}
