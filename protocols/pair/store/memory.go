package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/defistate/pairpool-go/protocols/pair"
)

// MemoryStore keeps slots in process memory, encoded the same way LevelDBStore
// persists them, so both stores accept and reject the same tokens.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte)}
}

// Load returns a copy of the token stored in slot, or ErrNotFound.
func (s *MemoryStore) Load(slot string) (pair.Token, error) {
	s.mu.RLock()
	data, ok := s.slots[slot]
	s.mu.RUnlock()
	if !ok {
		return pair.Token{}, fmt.Errorf("%w: %s", ErrNotFound, slot)
	}
	return decodeToken(slot, data)
}

// Save encodes every entry before storing any, so a bad entry stores nothing.
func (s *MemoryStore) Save(entries ...Entry) error {
	encoded := make(map[string][]byte, len(entries))
	for _, e := range entries {
		data, err := encodeToken(e)
		if err != nil {
			return err
		}
		encoded[e.Slot] = data
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for slot, data := range encoded {
		s.slots[slot] = data
	}
	return nil
}

func encodeToken(e Entry) ([]byte, error) {
	data, err := json.Marshal(e.Token)
	if err != nil {
		return nil, storageErr("encode", e.Slot, err)
	}
	return data, nil
}

func decodeToken(slot string, data []byte) (pair.Token, error) {
	var t pair.Token
	if err := json.Unmarshal(data, &t); err != nil {
		return pair.Token{}, storageErr("decode", slot, err)
	}
	return t, nil
}
