package ratelimit

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// State is the submission record kept on the client.
type State struct {
	Count     int        `json:"count"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type Store interface {
	Load() (State, error)
	Save(State) error
	Clear() error
}

type MemoryStore struct {
	mu    sync.Mutex
	state State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *MemoryStore) Save(state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	return nil
}

func (m *MemoryStore) Clear() error {
	return m.Save(State{})
}

// FileStore keeps the state as JSON in a single file. A missing file is an empty state.
type FileStore struct {
	path string
}

func NewFileStore(path string) FileStore {
	return FileStore{path: path}
}

// DefaultStatePath is where the CLI keeps its record, under the user config directory.
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sayit", "messageSubmissionData.json"), nil
}

func (f FileStore) Load() (State, error) {
	raw, err := os.ReadFile(f.path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("reading rate limit state: %w", err)
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, fmt.Errorf("decoding rate limit state %s: %w", f.path, err)
	}
	return state, nil
}

func (f FileStore) Save(state State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("writing rate limit state: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f FileStore) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clearing rate limit state: %w", err)
	}
	return nil
}
