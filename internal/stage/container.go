// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package stage

import "sync"

// Container is a host-side ResizeSource. The service drives it from
// client resize reports; every subscriber sees every size change.
type Container struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(width, height float64)
}

// NewContainer creates a container with no subscribers.
func NewContainer() *Container {
	return &Container{subs: make(map[int]func(float64, float64))}
}

// Subscribe implements ResizeSource.
func (c *Container) Subscribe(fn func(width, height float64)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// SetSize reports a new container size to all subscribers.
func (c *Container) SetSize(width, height float64) {
	c.mu.Lock()
	subs := make([]func(float64, float64), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(width, height)
	}
}

// Subscribers returns the number of live subscriptions.
func (c *Container) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}
