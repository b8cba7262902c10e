package repositories

import (
	"bytes"
	"sync"
)

// MemoryBlobStore is the ephemeral sibling of BadgerBlobStore: identical
// semantics, nothing survives the process. It backs the per-client session
// store, which must not outlive the client.
type MemoryBlobStore struct {
	mu       sync.RWMutex
	values   map[string][]byte
	watchers map[string]chan Change
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		values:   make(map[string][]byte),
		watchers: make(map[string]chan Change),
	}
}

func (s *MemoryBlobStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

func (s *MemoryBlobStore) Set(key string, value []byte, writerID string) error {
	s.mu.Lock()
	s.values[key] = append([]byte(nil), value...)
	s.mu.Unlock()
	s.notify(key, writerID)
	return nil
}

func (s *MemoryBlobStore) CompareAndSwap(key string, expected, value []byte, writerID string) (bool, error) {
	s.mu.Lock()
	if !bytes.Equal(s.values[key], expected) {
		s.mu.Unlock()
		return false, nil
	}
	s.values[key] = append([]byte(nil), value...)
	s.mu.Unlock()
	s.notify(key, writerID)
	return true, nil
}

func (s *MemoryBlobStore) Delete(key string, writerID string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	s.notify(key, writerID)
	return nil
}

func (s *MemoryBlobStore) Watch(clientID string) <-chan Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.watchers[clientID]; ok {
		return ch
	}
	ch := make(chan Change, watchBufferSize)
	s.watchers[clientID] = ch
	return ch
}

func (s *MemoryBlobStore) Unwatch(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.watchers[clientID]; ok {
		delete(s.watchers, clientID)
		close(ch)
	}
}

func (s *MemoryBlobStore) notify(key, writerID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for clientID, ch := range s.watchers {
		if clientID == writerID {
			continue
		}
		select {
		case ch <- Change{Key: key}:
		default:
		}
	}
}
