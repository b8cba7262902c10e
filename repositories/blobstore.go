package repositories

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// Change is emitted to watching clients when a key's value changes.
type Change struct {
	Key string
}

// IBlobStore is the shared key-value store every client of the same origin
// reads and writes. Get returns (nil, nil) for a missing key. Change
// notifications reach every watcher except the writer itself, mirroring how
// browser storage events behave; the writer must refresh explicitly.
type IBlobStore interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, writerID string) error
	CompareAndSwap(key string, expected, value []byte, writerID string) (bool, error)
	Delete(key string, writerID string) error
	Watch(clientID string) <-chan Change
	Unwatch(clientID string)
}

const watchBufferSize = 16

// BadgerBlobStore persists blobs in BadgerDB and fans out change events to
// registered watchers in-process.
type BadgerBlobStore struct {
	db  *badger.DB
	log *slog.Logger

	mu       sync.RWMutex
	watchers map[string]chan Change
}

func NewBadgerBlobStore(db *badger.DB, log *slog.Logger) *BadgerBlobStore {
	return &BadgerBlobStore{
		db:       db,
		log:      log,
		watchers: make(map[string]chan Change),
	}
}

func (s *BadgerBlobStore) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", key, err)
	}
	return value, nil
}

func (s *BadgerBlobStore) Set(key string, value []byte, writerID string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	s.notify(key, writerID)
	return nil
}

// CompareAndSwap writes only if the stored value still equals expected
// (a missing key compares equal to nil). The comparison and the write share
// one transaction, so concurrent appends cannot silently overwrite each other.
func (s *BadgerBlobStore) CompareAndSwap(key string, expected, value []byte, writerID string) (bool, error) {
	conflict := false
	err := s.db.Update(func(txn *badger.Txn) error {
		var current []byte
		item, err := txn.Get([]byte(key))
		switch err {
		case nil:
			current, err = item.ValueCopy(nil)
			if err != nil {
				return err
			}
		case badger.ErrKeyNotFound:
		default:
			return err
		}

		if !bytes.Equal(current, expected) {
			conflict = true
			return nil
		}
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return false, fmt.Errorf("swapping %q: %w", key, err)
	}
	if conflict {
		return false, nil
	}
	s.notify(key, writerID)
	return true, nil
}

func (s *BadgerBlobStore) Delete(key string, writerID string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	s.notify(key, writerID)
	return nil
}

func (s *BadgerBlobStore) Watch(clientID string) <-chan Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.watchers[clientID]; ok {
		return ch
	}
	ch := make(chan Change, watchBufferSize)
	s.watchers[clientID] = ch
	return ch
}

func (s *BadgerBlobStore) Unwatch(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.watchers[clientID]; ok {
		delete(s.watchers, clientID)
		close(ch)
	}
}

func (s *BadgerBlobStore) notify(key, writerID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for clientID, ch := range s.watchers {
		if clientID == writerID {
			continue
		}
		select {
		case ch <- Change{Key: key}:
		default:
			// A slow client misses the event; its polling fallback catches up.
			s.log.Debug("Change notification dropped", "client", clientID, "key", key)
		}
	}
}
