// Package ui holds the client-side presentation state that is not tied to
// any rendering: the auth modal controller, the request bus that opens it,
// and toast notifiers.
package ui

import (
	"context"
	"sync"
)

type AuthMode string

const (
	ModeLogin    AuthMode = "login"
	ModeRegister AuthMode = "register"
)

func (m AuthMode) Valid() bool {
	return m == ModeLogin || m == ModeRegister
}

// AuthRequest asks whoever owns the auth modal to open it in Mode.
type AuthRequest struct {
	Mode AuthMode
}

// Bus delivers auth requests to registered handlers in registration order.
// Handlers run on the caller's goroutine.
type Bus struct {
	mu       sync.Mutex
	nextID   int
	handlers []busHandler
}

type busHandler struct {
	id int
	fn func(context.Context, AuthRequest)
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(context.Context, AuthRequest)) (cancel func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers = append(b.handlers, busHandler{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, h := range b.handlers {
				if h.id == id {
					b.handlers = append(b.handlers[:i], b.handlers[i+1:]...)
					return
				}
			}
		})
	}
}

// RequestAuth publishes a request. An unknown mode is treated as login.
func (b *Bus) RequestAuth(ctx context.Context, mode AuthMode) {
	if !mode.Valid() {
		mode = ModeLogin
	}

	b.mu.Lock()
	handlers := append([]busHandler(nil), b.handlers...)
	b.mu.Unlock()

	for _, h := range handlers {
		h.fn(ctx, AuthRequest{Mode: mode})
	}
}
