package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend stores the session as one JSON object on disk.
type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (f *FileBackend) Load(_ context.Context) (Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	return Snapshot{
		Token: rawValue(envelope[KeyAuthToken]),
		User:  rawValue(envelope[KeyUser]),
	}, nil
}

func (f *FileBackend) Save(_ context.Context, snap Snapshot) error {
	envelope := map[string]json.RawMessage{}
	if len(snap.Token) > 0 {
		envelope[KeyAuthToken] = encodeRaw(snap.Token)
	}
	if len(snap.User) > 0 {
		envelope[KeyUser] = encodeRaw(snap.User)
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func (f *FileBackend) Clear(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// Values are kept as JSON strings, the way a browser's localStorage holds
// them, so a damaged value does not make the whole file unreadable.
func encodeRaw(b []byte) json.RawMessage {
	encoded, _ := json.Marshal(string(b))
	return encoded
}

func rawValue(msg json.RawMessage) []byte {
	if len(msg) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return []byte(msg)
	}
	if s == "" {
		return nil
	}
	return []byte(s)
}
