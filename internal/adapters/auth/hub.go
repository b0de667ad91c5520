package auth

import (
	"sync"

	"staybook/internal/domain"
)

// hub fans session events out to listeners. Listeners run synchronously on
// the goroutine that changed the session, outside the lock, so a listener
// may unsubscribe itself.
type hub struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(domain.SessionEvent)
}

func newHub() *hub { return &hub{subs: map[int]func(domain.SessionEvent){}} }

func (h *hub) subscribe(fn func(domain.SessionEvent)) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *hub) publish(e domain.SessionEvent) {
	h.mu.RLock()
	fns := make([]func(domain.SessionEvent), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()
	for _, fn := range fns {
		fn(e)
	}
}
