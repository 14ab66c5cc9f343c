package httpx

import (
	"context"
	"net/http"
	"sync"
)

type drainKey struct{}

// Drain ends long-lived responses when the server shuts down.
// http.Server.Shutdown does not cancel request contexts, so streaming
// handlers also watch Draining. Register Close with
// http.Server.RegisterOnShutdown.
type Drain struct {
	once sync.Once
	ch   chan struct{}
}

func NewDrain() *Drain {
	return &Drain{ch: make(chan struct{})}
}

// Close is idempotent.
func (d *Drain) Close() {
	d.once.Do(func() { close(d.ch) })
}

func (d *Drain) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), drainKey{}, d.ch)))
	})
}

// Draining is closed once the server starts shutting down. Without a Drain
// on the request it never fires.
func Draining(ctx context.Context) <-chan struct{} {
	ch, _ := ctx.Value(drainKey{}).(chan struct{})
	return ch
}
