package store

import (
	"errors"
	"fmt"

	"github.com/defistate/pairpool-go/protocols/pair"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

const slotKeyPrefix = "pair/slot/"

// LevelDBStore persists slots in a LevelDB database. Multi-slot saves are
// written as a single batch.
type LevelDBStore struct {
	db   *leveldb.DB
	sync bool
}

// OpenLevelDB opens (or creates) the database at path. With syncWrites set every
// Save is fsynced before it returns.
func OpenLevelDB(path string, syncWrites bool) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorage, path, err)
	}
	return &LevelDBStore{db: db, sync: syncWrites}, nil
}

func slotKey(slot string) []byte {
	return []byte(slotKeyPrefix + slot)
}

// Load returns the token stored in slot, or ErrNotFound.
func (s *LevelDBStore) Load(slot string) (pair.Token, error) {
	data, err := s.db.Get(slotKey(slot), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return pair.Token{}, fmt.Errorf("%w: %s", ErrNotFound, slot)
	}
	if err != nil {
		return pair.Token{}, storageErr("load", slot, err)
	}
	return decodeToken(slot, data)
}

// Save writes all entries in one batch.
func (s *LevelDBStore) Save(entries ...Entry) error {
	batch := new(leveldb.Batch)
	for _, e := range entries {
		data, err := encodeToken(e)
		if err != nil {
			return err
		}
		batch.Put(slotKey(e.Slot), data)
	}
	if err := s.db.Write(batch, &opt.WriteOptions{Sync: s.sync}); err != nil {
		return storageErr("save", fmt.Sprintf("%d slots", len(entries)), err)
	}
	return nil
}

// Close releases the database.
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
