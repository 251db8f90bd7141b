package models

import (
	"strings"
	"time"
)

// Role is a member's role in the household.
type Role string

const (
	// RoleAdmin is held by exactly one member, who can never be removed.
	RoleAdmin Role = "admin"
	// RoleMember is the role of every other registered member.
	RoleMember Role = "member"
)

// Member represents a registered household member.
type Member struct {
	// ID is a unique positive integer. 0 is reserved for Guest.
	ID int64 `json:"id"`

	// Name is the display name (e.g., "John").
	Name string `json:"name"`

	// Initials are shown in avatars. Derived from the first two
	// characters of Name when the member is added.
	Initials string `json:"initials"`

	// AvatarColor is a CSS color used by the presentation layer.
	AvatarColor string `json:"avatarColor"`

	// Role is RoleAdmin or RoleMember.
	Role Role `json:"role"`

	// PasswordHash is opaque to everything except auth.Credential.
	PasswordHash string `json:"passwordHash"`

	// CreatedAt is when the member was registered.
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin reports whether m holds the admin role.
func (m Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// AvatarPalette is the set of colors handed out to new members.
var AvatarPalette = []string{"#4361ee", "#4ade80", "#f59e0b", "#4cc9f0", "#9d4edd", "#ff6d00"}

// GuestAvatarColor is the avatar color shown for Guest.
const GuestAvatarColor = "#6c757d"

// InitialsFor returns the first two characters of name, uppercased.
func InitialsFor(name string) string {
	runes := []rune(strings.TrimSpace(name))
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}

// AvatarColorFor picks a palette color for a member ID.
func AvatarColorFor(id int64) string {
	if id <= 0 {
		return GuestAvatarColor
	}
	return AvatarPalette[(id-1)%int64(len(AvatarPalette))]
}
