// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package selection

import (
	"sync"
	"time"
)

// Factory builds the controller for a browser session
type Factory func(sessionID, guestID string) *Controller

type entry struct {
	controller *Controller
	lastSeen   time.Time
}

// Registry keeps one controller per browser session. Controllers unused for
// longer than idle are dropped; a zero idle keeps them forever.
type Registry struct {
	mu          sync.Mutex
	factory     Factory
	controllers map[string]*entry
	idle        time.Duration
	lastSweep   time.Time
	now         func() time.Time
}

func NewRegistry(factory Factory, idle time.Duration) *Registry {
	return &Registry{
		factory:     factory,
		controllers: make(map[string]*entry),
		idle:        idle,
		now:         time.Now,
	}
}

// Get returns the session's controller, creating it on first use
func (r *Registry) Get(sessionID, guestID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	e, ok := r.controllers[sessionID]
	if !ok {
		e = &entry{controller: r.factory(sessionID, guestID)}
		r.controllers[sessionID] = e
	}
	e.lastSeen = now
	return e.controller
}

func (r *Registry) sweep(now time.Time) {
	if r.idle <= 0 || now.Sub(r.lastSweep) < r.idle/4 {
		return
	}
	r.lastSweep = now
	for id, e := range r.controllers {
		if now.Sub(e.lastSeen) >= r.idle {
			delete(r.controllers, id)
		}
	}
}

// Drop forgets a session; the next Get starts over
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.controllers, sessionID)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}
