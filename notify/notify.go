// Package notify keeps the transient toast shown to a visitor. Each toast
// expires on a timer owned by its Center; replacing, dismissing or closing
// stops that timer, so nothing fires for a toast that is already gone.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindError   Kind = "error"
)

// DefaultTTL is how long a toast stays visible when no TTL is configured.
const DefaultTTL = 5 * time.Second

type Toast struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type entry struct {
	toast Toast
	timer *time.Timer
}

// Center holds at most one toast at a time: a new toast replaces the current
// one.
type Center struct {
	mu      sync.Mutex
	ttl     time.Duration
	current *entry
	closed  bool
	now     func() time.Time
}

func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{
		ttl: ttl,
		now: time.Now,
	}
}

// Show displays a toast for ttl, replacing the current one. A closed Center
// returns the zero Toast.
func (c *Center) Show(kind Kind, message string, ttl time.Duration) Toast {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Toast{}
	}
	c.stopCurrentLocked()

	now := c.now()
	e := &entry{
		toast: Toast{
			ID:        uuid.NewString(),
			Kind:      kind,
			Message:   message,
			CreatedAt: now,
			ExpiresAt: now.Add(ttl),
		},
	}
	e.timer = time.AfterFunc(ttl, func() { c.expire(e) })
	c.current = e
	return e.toast
}

func (c *Center) Success(message string) { c.Show(KindSuccess, message, 0) }
func (c *Center) Info(message string)    { c.Show(KindInfo, message, 0) }
func (c *Center) Error(message string)   { c.Show(KindError, message, 0) }

// Active returns the visible toasts.
func (c *Center) Active() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return []Toast{}
	}
	return []Toast{c.current.toast}
}

// Dismiss removes the toast with the given id before it expires.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.current.toast.ID != id {
		return false
	}
	c.stopCurrentLocked()
	return true
}

// Close drops the current toast and makes every later Show a no-op.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopCurrentLocked()
	c.closed = true
}

func (c *Center) expire(e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == e {
		c.current = nil
	}
}

func (c *Center) stopCurrentLocked() {
	if c.current == nil {
		return
	}
	c.current.timer.Stop()
	c.current = nil
}
