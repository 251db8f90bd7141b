package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/akilaweerasekara/Home-Inventory/internal/models"
)

// MinPasswordLength is the shortest password a member may set.
const MinPasswordLength = 4

// ListMembers returns every member in insertion order.
func (h *Household) ListMembers() []models.Member {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]models.Member(nil), h.members...)
}

// Member returns the member with the given ID.
func (h *Household) Member(id int64) (models.Member, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.findMember(id)
}

// AddMember registers a new member with role "member".
// Name and password are trimmed before validation.
func (h *Household) AddMember(ctx context.Context, name, initialPassword string) (_ models.Member, err error) {
	defer func() { h.metrics.ObserveOperation("add_member", err) }()

	name = strings.TrimSpace(name)
	initialPassword = strings.TrimSpace(initialPassword)

	if name == "" {
		return models.Member{}, models.NewValidationError("please enter a name")
	}
	if initialPassword == "" {
		return models.Member{}, models.NewValidationError("please enter an initial password")
	}
	if utf8.RuneCountInString(initialPassword) < MinPasswordLength {
		return models.Member{}, models.NewValidationError("password must be at least %d characters", MinPasswordLength)
	}

	hash, err := h.cred.Hash(initialPassword)
	if err != nil {
		return models.Member{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextMemberID()
	member := models.Member{
		ID:           id,
		Name:         name,
		Initials:     models.InitialsFor(name),
		AvatarColor:  models.AvatarColorFor(id),
		Role:         models.RoleMember,
		PasswordHash: hash,
		CreatedAt:    h.clock(),
	}
	h.members = append(h.members, member)

	h.logger.Info("Member added", "member_id", member.ID, "name", member.Name)
	return member, h.saveMembers(ctx)
}

// ChangePassword replaces a member's password after verifying the current one.
func (h *Household) ChangePassword(ctx context.Context, memberID int64, current, newPassword, confirm string) (err error) {
	defer func() { h.metrics.ObserveOperation("change_password", err) }()

	h.mu.Lock()
	defer h.mu.Unlock()

	idx := -1
	for i, m := range h.members {
		if m.ID == memberID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.NewNotFoundError("member %d not found", memberID)
	}
	member := h.members[idx]

	if !h.cred.Verify(member.PasswordHash, current) {
		h.logger.Warn("Password change rejected", "member_id", memberID)
		return models.NewAuthError("current password is incorrect")
	}
	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return models.NewValidationError("new password must be at least %d characters", MinPasswordLength)
	}
	if newPassword != confirm {
		return models.NewValidationError("new passwords do not match")
	}

	hash, err := h.cred.Hash(newPassword)
	if err != nil {
		return err
	}
	h.members[idx].PasswordHash = hash

	h.logger.Info("Password changed", "member_id", memberID)
	return h.saveMembers(ctx)
}

// RemoveMember deletes a member together with their private items.
//
// The admin can never be removed. Removal requires the target member's own
// password; there is no admin override. Family items the member added stay
// in the catalog. Sessions unlocked as the member are locked.
//
// It returns the number of private items removed.
func (h *Household) RemoveMember(ctx context.Context, memberID int64, password string) (_ int, err error) {
	defer func() { h.metrics.ObserveOperation("remove_member", err) }()

	h.mu.Lock()
	defer h.mu.Unlock()

	member, ok := h.findMember(memberID)
	if !ok {
		return 0, models.NewNotFoundError("member %d not found", memberID)
	}
	if member.IsAdmin() {
		return 0, models.NewPermissionError("cannot remove the admin")
	}
	if !h.cred.Verify(member.PasswordHash, password) {
		h.logger.Warn("Member removal rejected", "member_id", memberID)
		return 0, models.NewAuthError("incorrect password for %s", member.Name)
	}

	var removed []models.Item
	kept := make([]models.Item, 0, len(h.items))
	for _, item := range h.items {
		if item.IsPrivate() && item.OwnedBy(memberID) {
			removed = append(removed, item)
			continue
		}
		kept = append(kept, item)
	}

	members := make([]models.Member, 0, len(h.members))
	for _, m := range h.members {
		if m.ID != memberID {
			members = append(members, m)
		}
	}

	h.items = kept
	h.members = members
	h.revokeSessions(memberID)

	h.logger.Info("Member removed",
		"member_id", memberID,
		"name", member.Name,
		"private_items_removed", len(removed),
	)

	err = errors.Join(h.saveMembers(ctx), h.saveItems(ctx))
	for _, item := range removed {
		h.deletePhoto(ctx, item.Photo)
	}
	return len(removed), err
}
