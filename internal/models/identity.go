package models

// GuestName is the display name of the Guest identity.
const GuestName = "Guest"

// GuestOwnerID is the owner ID persisted for items added by Guest.
const GuestOwnerID int64 = 0

// Identity is who a session is acting as: either Guest or a Member.
// The zero value is Guest.
type Identity struct {
	memberID int64
	name     string
}

// GuestIdentity returns the Guest identity.
func GuestIdentity() Identity {
	return Identity{}
}

// MemberIdentity returns the identity of m.
func MemberIdentity(m Member) Identity {
	return Identity{memberID: m.ID, name: m.Name}
}

// IsGuest reports whether the identity is Guest.
func (id Identity) IsGuest() bool {
	return id.memberID <= 0
}

// MemberID returns the member ID and true, or 0 and false for Guest.
func (id Identity) MemberID() (int64, bool) {
	if id.IsGuest() {
		return 0, false
	}
	return id.memberID, true
}

// Is reports whether the identity is the member with the given ID.
func (id Identity) Is(memberID int64) bool {
	return !id.IsGuest() && id.memberID == memberID
}

// OwnerID returns the owner ID to persist on items added by this identity.
func (id Identity) OwnerID() int64 {
	if id.IsGuest() {
		return GuestOwnerID
	}
	return id.memberID
}

// Name returns the display name.
func (id Identity) Name() string {
	if id.IsGuest() {
		return GuestName
	}
	return id.name
}

func (id Identity) String() string {
	return id.Name()
}
