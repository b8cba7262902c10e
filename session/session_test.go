package session

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"safespace/domain"
	"safespace/errors"
	"safespace/repositories"
)

func TestManager_LoginRestoreLogout(t *testing.T) {
	req := require.New(t)
	store := repositories.NewMemoryBlobStore()
	manager := NewManager(slog.Default(), store)

	_, err := manager.Restore()
	req.ErrorIs(err, errors.ErrNoSession)

	session, err := manager.Login("  alice  ")
	req.NoError(err)
	req.Equal("alice", session.Name)
	req.NotEqual([16]byte{}, [16]byte(session.ClientID))

	restored, err := manager.Restore()
	req.NoError(err)
	req.Equal(session, restored)

	req.NoError(manager.Logout(session))
	_, err = manager.Restore()
	req.ErrorIs(err, errors.ErrNoSession)
}

func TestManager_LoginRejectsInvalidNames(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
	}{
		{name: "empty", displayName: ""},
		{name: "only whitespace", displayName: "   "},
		{name: "too long", displayName: string(make([]byte, 80))},
	}

	manager := NewManager(slog.Default(), repositories.NewMemoryBlobStore())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.Login(tt.displayName)
			require.Error(t, err)
		})
	}
}

func TestManager_RestoreDiscardsMangledIdentity(t *testing.T) {
	req := require.New(t)
	store := repositories.NewMemoryBlobStore()
	req.NoError(store.Set(DefaultIdentityKey, []byte("not json"), "tab-1"))

	_, err := NewManager(slog.Default(), store).Restore()
	req.ErrorIs(err, errors.ErrNoSession)
}

func TestManager_ClientsDoNotShareIdentity(t *testing.T) {
	req := require.New(t)

	a := NewManager(slog.Default(), repositories.NewMemoryBlobStore())
	b := NewManager(slog.Default(), repositories.NewMemoryBlobStore())

	alice, err := a.Login("alice")
	req.NoError(err)
	_, err = b.Login("bob")
	req.NoError(err)

	// each client owns its ephemeral store; another login never replaces it
	restored, err := a.Restore()
	req.NoError(err)
	req.Equal(alice, restored)
}

func TestManager_TwoClientsSameNameShareOwnership(t *testing.T) {
	req := require.New(t)

	a, err := NewManager(slog.Default(), repositories.NewMemoryBlobStore()).Login("alice")
	req.NoError(err)
	b, err := NewManager(slog.Default(), repositories.NewMemoryBlobStore()).Login("alice")
	req.NoError(err)

	req.NotEqual(a.ClientID, b.ClientID)

	// the log only carries sender names, so both render the message as theirs
	msg := domain.NewMessage("alice", "hi", time.Now())
	req.True(a.Owns(msg))
	req.True(b.Owns(msg))
	req.False(a.Owns(domain.Welcome()))
}
