package auth

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/crypto/bcrypt"
)

// Credential hashes and verifies member passwords.
// This abstraction allows swapping the hashing primitive without touching
// the directory, session or catalog code.
type Credential interface {
	// Hash returns the value to store as Member.PasswordHash.
	Hash(password string) (string, error)

	// Verify reports whether password matches a stored hash.
	Verify(hash, password string) bool
}

// Checksum is the legacy password "hash": a 32-bit string checksum over the
// UTF-16 code units of the password, rendered in decimal.
//
// It is NOT a security primitive. It is unsalted and trivially
// collidable, and only exists so data written by the FamilySync web app
// keeps verifying. It gates casual visibility of private items and nothing
// more.
type Checksum struct{}

// Hash implements Credential.
func (Checksum) Hash(password string) (string, error) {
	return checksum(password), nil
}

// Verify implements Credential.
func (Checksum) Verify(hash, password string) bool {
	return hash == checksum(password)
}

func checksum(s string) string {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(unit)
	}
	return strconv.FormatInt(int64(h), 10)
}

// Bcrypt hashes passwords with bcrypt.
type Bcrypt struct {
	// Cost is the bcrypt work factor. Zero means bcrypt.DefaultCost.
	Cost int
}

// Hash implements Credential.
func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify implements Credential.
func (Bcrypt) Verify(hash, password string) bool {
	if !strings.HasPrefix(hash, "$2") {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Fallback hashes with Primary and verifies against Primary, then Legacy.
// It lets a store seeded with checksums keep working after switching to bcrypt;
// hashes are upgraded as members change their passwords.
type Fallback struct {
	Primary Credential
	Legacy  Credential
}

// Hash implements Credential.
func (f Fallback) Hash(password string) (string, error) {
	return f.Primary.Hash(password)
}

// Verify implements Credential.
func (f Fallback) Verify(hash, password string) bool {
	if f.Primary.Verify(hash, password) {
		return true
	}
	return f.Legacy != nil && f.Legacy.Verify(hash, password)
}

// NewCredential returns the credential registered under name:
// "checksum" (default) or "bcrypt". bcrypt falls back to checksum for
// hashes written before the switch.
func NewCredential(name string, bcryptCost int) (Credential, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "checksum":
		return Checksum{}, nil
	case "bcrypt":
		return Fallback{Primary: Bcrypt{Cost: bcryptCost}, Legacy: Checksum{}}, nil
	default:
		return nil, fmt.Errorf("unknown credential %q", name)
	}
}
