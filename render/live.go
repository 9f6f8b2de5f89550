package render

import (
	"sync"

	"farmstore-backend/cart"

	"go.uber.org/zap"
)

// Live keeps the latest rendered view of one cart, redrawn on every change.
type Live struct {
	log         *zap.Logger
	renderer    *Renderer
	unsubscribe func()

	mu   sync.RWMutex
	view View
}

// Bind renders store's current contents and follows every later change.
// It is safe to call while other goroutines mutate the store.
func Bind(store *cart.Store, renderer *Renderer, log *zap.Logger) *Live {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Live{log: log, renderer: renderer}
	l.unsubscribe = store.Watch(l.update)
	return l
}

func (l *Live) update(snap cart.Snapshot) {
	v, err := l.renderer.Render(snap)
	if err != nil {
		// keep the previous view
		l.log.Error("failed to render cart", zap.Error(err))
		return
	}

	l.mu.Lock()
	l.view = v
	l.mu.Unlock()
}

func (l *Live) View() View {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.view
}

// Close stops following the store. The last view remains readable.
func (l *Live) Close() {
	l.unsubscribe()
}
