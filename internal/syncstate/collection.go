// Package syncstate holds the in-memory collection a view-controller owns.
//
// Loads are tagged with a sequence number so that only the latest issued
// load may replace the contents. Mutating operations are guarded by key so
// the same action cannot be submitted twice while its request is in
// flight. After Close every write is dropped, which makes late responses
// for a torn-down view harmless.
package syncstate

import (
	"context"
	"errors"
	"sync"
)

// ErrInFlight is returned when the same guarded action is already running.
var ErrInFlight = errors.New("operation already in progress")

// ErrClosed is returned for operations started after Close.
var ErrClosed = errors.New("collection closed")

type Collection[T any] struct {
	idOf func(T) int

	guard *Guard

	mu     sync.Mutex
	items  []T
	seq    uint64
	loaded bool
	closed bool
}

func New[T any](idOf func(T) int) *Collection[T] {
	return &Collection[T]{
		idOf:  idOf,
		guard: NewGuard(),
	}
}

// BeginLoad issues a new load sequence, superseding every earlier one.
func (c *Collection[T]) BeginLoad() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// CommitLoad replaces the contents wholesale if seq is still the latest
// issued load. It reports whether the result was applied.
func (c *Collection[T]) CommitLoad(seq uint64, items []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.seq {
		return false
	}
	c.items = append(make([]T, 0, len(items)), items...)
	c.loaded = true
	return true
}

// Current reports whether seq is still the latest issued load.
func (c *Collection[T]) Current(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && seq == c.seq
}

// Load fetches and commits in one step. A superseded result is discarded
// and reported as applied=false with a nil error.
func (c *Collection[T]) Load(ctx context.Context, fetch func(context.Context) ([]T, error)) (bool, error) {
	seq := c.BeginLoad()
	items, err := fetch(ctx)
	if err != nil {
		if !c.Current(seq) {
			return false, nil
		}
		return false, err
	}
	return c.CommitLoad(seq, items), nil
}

func (c *Collection[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Items returns a copy of the current contents in order.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(make([]T, 0, len(c.items)), c.items...)
}

func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Collection[T]) Get(id int) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Filter returns the items matching pred without touching the collection.
func (c *Collection[T]) Filter(pred func(T) bool) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

func (c *Collection[T]) Append(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.items = append(c.items, item)
	return true
}

func (c *Collection[T]) Prepend(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.items = append([]T{item}, c.items...)
	return true
}

// Replace swaps the item with the same id in place.
func (c *Collection[T]) Replace(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	i := c.indexOf(c.idOf(item))
	if i < 0 {
		return false
	}
	c.items[i] = item
	return true
}

// Update applies fn to the item with id under the collection lock.
func (c *Collection[T]) Update(id int, fn func(*T)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	fn(&c.items[i])
	return true
}

func (c *Collection[T]) Remove(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

// Set replaces the contents without a load sequence, e.g. after a reorder.
func (c *Collection[T]) Set(items []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.items = append(make([]T, 0, len(items)), items...)
	return true
}

// Guard runs fn unless another call with the same key is still running.
func (c *Collection[T]) Guard(key string, fn func() error) error {
	if c.Closed() {
		return ErrClosed
	}
	return c.guard.Do(key, fn)
}

// Pending reports whether a guarded action with key is in flight.
func (c *Collection[T]) Pending(key string) bool {
	return c.guard.Pending(key)
}

// Close tears the collection down; later writes are ignored.
func (c *Collection[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Collection[T]) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Collection[T]) indexOf(id int) int {
	for i, item := range c.items {
		if c.idOf(item) == id {
			return i
		}
	}
	return -1
}
