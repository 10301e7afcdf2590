package session

import "sync"

// Event is the same-process "session changed" notification.
type Event struct {
	// Scope identifies the storage namespace (browser client) the change happened in.
	Scope         string
	Authenticated bool
	UserCode      string
}

type Broadcaster struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Event)
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a function removing it again.
func (b *Broadcaster) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *Broadcaster) Publish(e Event) {
	b.mu.RLock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}
