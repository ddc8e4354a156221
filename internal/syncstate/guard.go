package syncstate

import "sync"

// Guard tracks keyed actions in flight so a control can be disabled while
// its request is outstanding.
type Guard struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{keys: make(map[string]struct{})}
}

// Do runs fn unless key is already in flight, in which case it returns
// ErrInFlight without calling fn.
func (g *Guard) Do(key string, fn func() error) error {
	if !g.acquire(key) {
		return ErrInFlight
	}
	defer g.release(key)
	return fn()
}

func (g *Guard) Pending(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.keys[key]
	return busy
}

func (g *Guard) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.keys == nil {
		g.keys = make(map[string]struct{})
	}
	if _, busy := g.keys[key]; busy {
		return false
	}
	g.keys[key] = struct{}{}
	return true
}

func (g *Guard) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
}
