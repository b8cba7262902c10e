// Package session holds the ephemeral per-client identity. A session never
// reaches the shared log as anything but a sender string: it carries no
// authorization meaning and only drives local rendering.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"safespace/domain"
	"safespace/errors"
	"safespace/repositories"
)

// DefaultIdentityKey is the ephemeral store key holding the current identity.
const DefaultIdentityKey = "safespace_current_user"

// Session identifies one client instance. ClientID is stable for the life of
// the client and disambiguates two tabs that picked the same display name;
// message ownership for rendering still compares display names, because
// that is all the shared log carries.
type Session struct {
	Name     string    `json:"name" validate:"required,min=1,max=64"`
	ClientID uuid.UUID `json:"clientId"`
}

// Owns reports whether the message should render as the client's own.
func (s Session) Owns(m domain.Message) bool {
	return m.Sender == s.Name
}

// Manager drives the login/logout lifecycle against the ephemeral store.
type Manager struct {
	log      *slog.Logger
	store    repositories.IBlobStore
	key      string
	validate *validator.Validate
}

func NewManager(log *slog.Logger, store repositories.IBlobStore) *Manager {
	return &Manager{
		log:      log,
		store:    store,
		key:      DefaultIdentityKey,
		validate: validator.New(),
	}
}

// Login validates the display name, mints a fresh client ID and persists the
// identity in the ephemeral store so a reloaded client can restore it.
func (m *Manager) Login(name string) (Session, error) {
	session := Session{
		Name:     strings.TrimSpace(name),
		ClientID: uuid.New(),
	}
	if err := m.validate.Struct(session); err != nil {
		return Session{}, fmt.Errorf("invalid display name: %w", err)
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return Session{}, err
	}
	if err := m.store.Set(m.key, raw, session.ClientID.String()); err != nil {
		return Session{}, err
	}

	m.log.Info("Session started", "user", session.Name, "client", session.ClientID)
	return session, nil
}

// Restore returns the identity a previous login left behind, if any.
func (m *Manager) Restore() (Session, error) {
	raw, err := m.store.Get(m.key)
	if err != nil {
		return Session{}, err
	}
	if len(raw) == 0 {
		return Session{}, errors.ErrNoSession
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		// a mangled identity is indistinguishable from no identity
		m.log.Warn("Stored identity is unreadable, discarding", "error", err)
		return Session{}, errors.ErrNoSession
	}
	return session, nil
}

// Logout clears the stored identity. The shared log is untouched: history
// outlives every session.
func (m *Manager) Logout(session Session) error {
	if err := m.store.Delete(m.key, session.ClientID.String()); err != nil {
		return err
	}
	m.log.Info("Session ended", "user", session.Name)
	return nil
}
