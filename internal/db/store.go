package db

import (
	"encoding/json"
)

// Store persists the whole document. Load is called once at startup, Save
// after every mutating operation. Implementations must replace the previous
// snapshot atomically so a failed write never leaves a half-written document.
type Store interface {
	Load() (*State, error)
	Save(state *State) error
}

// MemoryStore keeps the serialized document in memory. It is used by tests
// and by ephemeral runs where durability does not matter.
type MemoryStore struct {
	data []byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the last saved document, or a fresh one if nothing was saved.
func (m *MemoryStore) Load() (*State, error) {
	if m.data == nil {
		return NewState(), nil
	}
	state := &State{}
	if err := json.Unmarshal(m.data, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Save serializes the document. Round-tripping through JSON keeps the
// semantics identical to the durable stores.
func (m *MemoryStore) Save(state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.data = data
	return nil
}
