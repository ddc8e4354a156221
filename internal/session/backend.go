package session

import (
	"context"
	"errors"
	"sync"
)

// Fixed storage keys of the persisted session.
const (
	KeyAuthToken = "authToken"
	KeyUser      = "user"
)

// ErrCorrupt is returned by a backend whose stored envelope cannot be read.
var ErrCorrupt = errors.New("stored session is corrupt")

// Snapshot holds the raw JSON values stored under KeyAuthToken and KeyUser.
// A nil field means the key is absent.
type Snapshot struct {
	Token []byte
	User  []byte
}

func (s Snapshot) Empty() bool {
	return len(s.Token) == 0 && len(s.User) == 0
}

// Backend is durable client-side storage for the session. Writes must
// survive a process restart.
type Backend interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Clear(ctx context.Context) error
}

// MemoryBackend keeps the snapshot in process; used by tests.
type MemoryBackend struct {
	mu   sync.Mutex
	snap Snapshot
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Load(_ context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Token: clone(m.snap.Token), User: clone(m.snap.User)}, nil
}

func (m *MemoryBackend) Save(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = Snapshot{Token: clone(snap.Token), User: clone(snap.User)}
	return nil
}

func (m *MemoryBackend) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = Snapshot{}
	return nil
}

// Raw returns the stored value of key, mirroring a localStorage read.
func (m *MemoryBackend) Raw(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch key {
	case KeyAuthToken:
		return string(m.snap.Token)
	case KeyUser:
		return string(m.snap.User)
	}
	return ""
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
