// Package session maps browser sessions to mounted form instances.
//
// Every session id owns exactly one form.Controller. Sessions expire after an
// idle TTL; expiry, explicit removal and registry shutdown all close the
// controller, which stops its reset timer and cancels its in-flight request.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/subscribebox/internal/form"
	"github.com/patrickmn/go-cache"
)

// Factory mounts a fresh form instance for a new session. The locale is the
// one negotiated for the request that created the session.
type Factory func(locale string) *form.Controller

// Registry holds the live form instances keyed by session id.
type Registry struct {
	mu      sync.Mutex
	items   *cache.Cache
	factory Factory
	ttl     time.Duration
}

// NewRegistry creates a registry whose sessions expire after ttl of inactivity.
// Expired sessions are only reclaimed by Sweep (or Run); the cache's own
// janitor goroutine is not used because it cannot be stopped.
func NewRegistry(factory Factory, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	items := cache.New(ttl, 0)
	items.OnEvicted(func(_ string, v interface{}) {
		if c, ok := v.(*form.Controller); ok {
			c.Close()
		}
	})
	return &Registry{items: items, factory: factory, ttl: ttl}
}

// Acquire returns the controller for id, sliding its expiry. An empty,
// malformed, unknown or expired id gets a freshly minted session mounted for
// locale; the returned id is the one the caller must hand back to the browser.
func (r *Registry) Acquire(id, locale string) (string, *form.Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := uuid.Parse(id); err == nil {
		if v, found := r.items.Get(id); found {
			c := v.(*form.Controller)
			if !c.Closed() {
				r.items.SetDefault(id, c)
				return id, c, false
			}
		}
	}

	newID := uuid.NewString()
	c := r.factory(locale)
	r.items.SetDefault(newID, c)
	return newID, c, true
}

// Lookup returns the controller for id without creating one.
func (r *Registry) Lookup(id string) (*form.Controller, bool) {
	v, found := r.items.Get(id)
	if !found {
		return nil, false
	}
	return v.(*form.Controller), true
}

// Remove unmounts and forgets a session.
func (r *Registry) Remove(id string) {
	r.items.Delete(id)
}

// Len returns the number of tracked sessions, including expired ones not yet swept.
func (r *Registry) Len() int {
	return r.items.ItemCount()
}

// Sweep closes and drops every expired session. It holds the registry lock so
// an expired controller cannot be closed between Acquire's lookup and its
// expiry refresh.
func (r *Registry) Sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items.DeleteExpired()
}

// Run sweeps on every tick until ctx is done, then closes all sessions.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close unmounts every session, expired or not.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Items skips expired entries, so evict those first.
	r.items.DeleteExpired()
	for id := range r.items.Items() {
		r.items.Delete(id)
	}
}
