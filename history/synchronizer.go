// Package history manages the shared append-only message log: multi-writer
// appends against the blob store, history reads, and the reload plumbing that
// keeps independent clients converging on the same view.
package history

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"safespace/domain"
	"safespace/errors"
	"safespace/repositories"
)

// DefaultLogKey is the well-known shared store key holding the message log.
const DefaultLogKey = "safespace_messages"

// AppendMode selects how concurrent appends are handled.
type AppendMode string

const (
	// ModeLastWriteWins is the unguarded read-modify-write append. Two
	// clients appending from the same snapshot lose one update; kept as the
	// compatibility mode and demonstrated as such in the tests.
	ModeLastWriteWins AppendMode = "last-write-wins"
	// ModeOptimistic retries the append against a fresh snapshot whenever the
	// log changed between read and write. Recommended.
	ModeOptimistic AppendMode = "optimistic"
)

// Synchronizer owns one client's view of the shared log. Both notification
// paths (change events and polling) converge on Reload, which refreshes the
// last-seen snapshot and hands the full history to the registered consumer.
type Synchronizer struct {
	log      *slog.Logger
	store    repositories.IBlobStore
	key      string
	clientID string
	mode     AppendMode
	retries  int
	now      func() time.Time

	mu       sync.Mutex
	lastSeen []byte
	onReload func([]domain.Message)
}

func NewSynchronizer(log *slog.Logger, store repositories.IBlobStore,
	key, clientID string, mode AppendMode, retries int) *Synchronizer {
	return &Synchronizer{
		log:      log,
		store:    store,
		key:      key,
		clientID: clientID,
		mode:     mode,
		retries:  retries,
		now:      time.Now,
	}
}

func (s *Synchronizer) Key() string { return s.key }

// OnReload registers the single consumer fed by every reload path.
func (s *Synchronizer) OnReload(fn func([]domain.Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = fn
}

// Append stamps and persists a new entry, then reloads the local view: the
// store never echoes a change event back to its writer.
func (s *Synchronizer) Append(sender, text string) (domain.Message, error) {
	msg := domain.NewMessage(sender, text, s.now())

	var err error
	switch s.mode {
	case ModeOptimistic:
		err = s.appendOptimistic(msg)
	default:
		var snapshot []byte
		snapshot, err = s.store.Get(s.key)
		if err == nil {
			err = s.commit(snapshot, msg)
		}
	}
	if err != nil {
		return domain.Message{}, err
	}

	s.Reload()
	return msg, nil
}

// commit is the unguarded read-modify-write step: serialize the snapshot the
// caller observed plus the new entry, and write it back whatever the store
// holds by now.
func (s *Synchronizer) commit(snapshot []byte, msg domain.Message) error {
	raw, err := json.Marshal(append(s.decode(snapshot), msg))
	if err != nil {
		return err
	}
	return s.store.Set(s.key, raw, s.clientID)
}

func (s *Synchronizer) appendOptimistic(msg domain.Message) error {
	for attempt := 0; attempt <= s.retries; attempt++ {
		snapshot, err := s.store.Get(s.key)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(append(s.decode(snapshot), msg))
		if err != nil {
			return err
		}
		swapped, err := s.store.CompareAndSwap(s.key, snapshot, raw, s.clientID)
		if err != nil {
			return err
		}
		if swapped {
			return nil
		}
		s.log.Debug("Concurrent append detected, retrying", "attempt", attempt+1)
	}
	return errors.ErrSnapshotConflict
}

// LoadAll returns the synthetic welcome entry followed by the persisted log
// in log order, and refreshes the last-seen snapshot so the poller does not
// re-report this read.
func (s *Synchronizer) LoadAll() ([]domain.Message, error) {
	raw, err := s.store.Get(s.key)
	if err != nil {
		return nil, err
	}
	messages := s.decode(raw)

	s.mu.Lock()
	s.lastSeen = raw
	s.mu.Unlock()

	return append([]domain.Message{domain.Welcome()}, messages...), nil
}

// Reload is the one consumer both notification producers feed.
func (s *Synchronizer) Reload() {
	messages, err := s.LoadAll()
	if err != nil {
		s.log.Warn("History reload failed", "error", err)
		return
	}

	s.mu.Lock()
	fn := s.onReload
	s.mu.Unlock()
	if fn != nil {
		fn(messages)
	}
}

// PollOnce compares the raw stored value against the last-seen snapshot and
// reloads on any difference. Returns whether a change was observed.
func (s *Synchronizer) PollOnce() (bool, error) {
	raw, err := s.store.Get(s.key)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	changed := !bytes.Equal(raw, s.lastSeen)
	s.mu.Unlock()

	if changed {
		s.Reload()
	}
	return changed, nil
}

// decode treats an unparseable log as empty history instead of wedging every
// client sharing the store.
func (s *Synchronizer) decode(raw []byte) []domain.Message {
	if len(raw) == 0 {
		return nil
	}
	var messages []domain.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		s.log.Warn("Shared log is unreadable, treating as empty", "error", err)
		return nil
	}
	return messages
}
