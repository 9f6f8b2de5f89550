// Package session tracks visitors. A visitor is identified by a signed
// session token; the Registry owns the in-memory state built for each one
// (cart store, toasts, rendered cart view) and drops it again once the
// visitor goes idle. Durable state lives in storage slots and outlives
// eviction.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"farmstore-backend/cart"
	"farmstore-backend/notify"
	"farmstore-backend/render"
	"farmstore-backend/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DraftKey names the slot holding the visitor's pre-filled contact message.
const DraftKey = "contactMessage"

var ErrClosed = errors.New("session registry closed")

type Session struct {
	ID     string
	Cart   *cart.Store
	Toasts *notify.Center
	View   *render.Live
	Draft  storage.Slot

	lastSeen atomic.Int64
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) close() {
	s.View.Close()
	s.Toasts.Close()
}

type Options struct {
	// IdleTTL is how long an unused session is kept in memory.
	IdleTTL time.Duration
	// SweepInterval defaults to half of IdleTTL.
	SweepInterval time.Duration
	ToastTTL      time.Duration
	Logger        *zap.Logger
}

type Registry struct {
	backend  storage.Backend
	renderer *render.Renderer
	log      *zap.Logger
	idleTTL  time.Duration
	toastTTL time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
	loads    singleflight.Group

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewRegistry starts a registry and its idle-session janitor. Call Close to
// stop the janitor.
func NewRegistry(backend storage.Backend, renderer *render.Renderer, opts Options) *Registry {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = opts.IdleTTL / 2
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := &Registry{
		backend:  backend,
		renderer: renderer,
		log:      opts.Logger,
		idleTTL:  opts.IdleTTL,
		toastTTL: opts.ToastTTL,
		now:      time.Now,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	go r.janitor(opts.SweepInterval)

	return r
}

// Get returns the visitor's session, building it from storage on first use.
// Concurrent first requests for the same visitor share a single load.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	if s, err := r.lookup(id); s != nil || err != nil {
		return s, err
	}

	v, err, _ := r.loads.Do(id, func() (interface{}, error) {
		if s, err := r.lookup(id); s != nil || err != nil {
			return s, err
		}

		// the load is shared, so one caller giving up must not cut it short
		s := r.build(context.WithoutCancel(ctx), id)

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			s.close()
			return nil, ErrClosed
		}
		r.sessions[id] = s
		r.mu.Unlock()

		r.log.Debug("session loaded", zap.String("session_id", id), zap.Int("items", s.Cart.ItemCount()))
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (r *Registry) lookup(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	s.touch(r.now())
	return s, nil
}

func (r *Registry) build(ctx context.Context, id string) *Session {
	toasts := notify.NewCenter(r.toastTTL)
	store := cart.NewStore(
		r.backend.Slot(id, cart.SlotKey),
		cart.WithLogger(r.log.With(zap.String("session_id", id))),
		cart.WithToaster(toasts),
	)
	store.Load(ctx)

	s := &Session{
		ID:     id,
		Cart:   store,
		Toasts: toasts,
		View:   render.Bind(store, r.renderer, r.log),
		Draft:  r.backend.Slot(id, DraftKey),
	}
	s.touch(r.now())
	return s
}

// Len reports how many sessions are held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) janitor(interval time.Duration) {
	defer close(r.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle()
		case <-r.stop:
			return
		}
	}
}

// evictIdle drops sessions not seen within the idle TTL.
func (r *Registry) evictIdle() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var idle []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.close()
	}
	if len(idle) > 0 {
		r.log.Debug("evicted idle sessions", zap.Int("count", len(idle)))
	}
	return len(idle)
}

// Close stops the janitor and releases every session. Get fails afterwards.
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		close(r.stop)
		<-r.done

		r.mu.Lock()
		r.closed = true
		sessions := r.sessions
		r.sessions = make(map[string]*Session)
		r.mu.Unlock()

		for _, s := range sessions {
			s.close()
		}
	})
}
