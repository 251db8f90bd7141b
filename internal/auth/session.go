package auth

import (
	"sync"

	"github.com/google/uuid"

	"github.com/akilaweerasekara/Home-Inventory/internal/models"
)

// Session is the access state of one presentation session.
//
// A session is either Locked (Guest, no private access) or Unlocked for one
// Member after that member's password verified. The unlocked state lives only
// in memory and is gone when the session is discarded.
type Session struct {
	mu       sync.RWMutex
	id       string
	cred     Credential
	identity models.Identity
	granted  bool
}

// NewSession returns a Locked session that verifies passwords with cred.
func NewSession(cred Credential) *Session {
	return &Session{
		id:   uuid.NewString(),
		cred: cred,
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Identity returns who the session is acting as.
func (s *Session) Identity() models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// PrivateAccessGranted reports whether the session is Unlocked.
func (s *Session) PrivateAccessGranted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.granted
}

// Unlocked reports whether the session is Unlocked and for which member.
func (s *Session) Unlocked() (memberID int64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.granted {
		return 0, false
	}
	return s.identity.MemberID()
}

// CanSeePrivate reports whether private items owned by ownerID are visible.
// A nil session sees no private items.
func (s *Session) CanSeePrivate(ownerID int64) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.granted && s.identity.Is(ownerID)
}

// Unlock verifies password for member and, on success, switches the session
// to Unlocked(member). Switching directly from one unlocked member to another
// is allowed; it takes the same verification. A failed attempt leaves the
// current state untouched.
func (s *Session) Unlock(member *models.Member, password string) error {
	if member == nil {
		return models.NewValidationError("please select a member")
	}
	if password == "" {
		return models.NewValidationError("please enter a password")
	}
	if !s.cred.Verify(member.PasswordHash, password) {
		return models.NewAuthError("incorrect password for %s", member.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = models.MemberIdentity(*member)
	s.granted = true
	return nil
}

// Lock returns the session to Guest without private access.
func (s *Session) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = models.GuestIdentity()
	s.granted = false
}

// Revoke locks the session if it is unlocked for memberID.
// It reports whether the session was locked.
func (s *Session) Revoke(memberID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.granted || !s.identity.Is(memberID) {
		return false
	}
	s.identity = models.GuestIdentity()
	s.granted = false
	return true
}
