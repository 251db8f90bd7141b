package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/akilaweerasekara/Home-Inventory/internal/auth"
	"github.com/akilaweerasekara/Home-Inventory/internal/models"
	"github.com/akilaweerasekara/Home-Inventory/internal/query"
)

// ItemDraft is the input for adding an item.
type ItemDraft struct {
	Name     string          `validate:"required"`
	Location string          `validate:"required"`
	Category models.Category `validate:"omitempty,oneof=documents tools electronics kitchen clothing medicine valuables other"`

	// Quantity defaults to 1 when zero.
	Quantity int `validate:"gte=0"`

	Description string
	Visibility  models.Visibility `validate:"omitempty,oneof=family private"`

	// Photo is a reference from StorePhoto, or any opaque string.
	Photo string

	// OwnerPassword unlocks adding a private item for an owner the session
	// is not unlocked as.
	OwnerPassword string
}

// ItemPatch changes some fields of an existing item. Nil fields are left
// alone. Visibility and owner cannot be changed.
type ItemPatch struct {
	Name        *string
	Location    *string
	Category    *models.Category
	Quantity    *int
	Description *string
	Photo       *string
}

// normalize trims text fields, applies defaults and validates the draft.
func (h *Household) normalize(d *ItemDraft) error {
	d.Name = strings.TrimSpace(d.Name)
	d.Location = strings.TrimSpace(d.Location)
	d.Description = strings.TrimSpace(d.Description)

	if err := h.validate.Struct(d); err != nil {
		return validationError(err)
	}

	if d.Category == "" {
		d.Category = models.CategoryOther
	}
	if d.Quantity == 0 {
		d.Quantity = 1
	}
	if d.Visibility == "" {
		d.Visibility = models.VisibilityFamily
	}
	return nil
}

// validationError turns validator output into a validation error naming the
// first offending field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError("invalid item: %v", err)
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return models.NewValidationError("please enter the item %s", field)
	case "oneof":
		return models.NewValidationError("unknown %s %q", field, fmt.Sprint(fe.Value()))
	case "gte":
		return models.NewValidationError("%s cannot be negative", field)
	default:
		return models.NewValidationError("invalid %s", field)
	}
}

// ListAll returns every item in catalog order, private ones included.
func (h *Household) ListAll() []models.Item {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]models.Item(nil), h.items...)
}

// FamilyItems returns the family items in catalog order.
func (h *Household) FamilyItems() []models.Item {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return query.Family(h.items)
}

// PrivateItems returns the private items visible to s.
func (h *Household) PrivateItems(s *auth.Session) []models.Item {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return query.Private(h.items, s)
}

// AddItem adds an item owned by owner.
//
// Guest may only add family items. A private item for a member requires the
// session to be unlocked as that member, or draft.OwnerPassword to verify
// for them.
func (h *Household) AddItem(ctx context.Context, s *auth.Session, draft ItemDraft, owner models.Identity) (_ models.Item, err error) {
	defer func() { h.metrics.ObserveOperation("add_item", err) }()

	if err := h.normalize(&draft); err != nil {
		return models.Item{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ownerName := models.GuestName
	if id, ok := owner.MemberID(); ok {
		member, found := h.findMember(id)
		if !found {
			return models.Item{}, models.NewValidationError("unknown member %d", id)
		}
		ownerName = member.Name

		if draft.Visibility == models.VisibilityPrivate && !s.CanSeePrivate(id) {
			if draft.OwnerPassword == "" || !h.cred.Verify(member.PasswordHash, draft.OwnerPassword) {
				return models.Item{}, models.NewAuthError("incorrect password for %s", member.Name)
			}
		}
	} else if draft.Visibility == models.VisibilityPrivate {
		return models.Item{}, models.NewPermissionError("guest cannot add private items")
	}

	now := h.clock()
	item := models.Item{
		ID:          h.nextItemID(),
		Name:        draft.Name,
		Location:    draft.Location,
		Category:    draft.Category,
		Quantity:    draft.Quantity,
		Description: draft.Description,
		Visibility:  draft.Visibility,
		OwnerID:     owner.OwnerID(),
		OwnerName:   ownerName,
		Photo:       draft.Photo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	h.items = append(h.items, item)

	h.logger.Info("Item added",
		"item_id", item.ID,
		"name", item.Name,
		"visibility", item.Visibility,
		"owner_id", item.OwnerID,
		"session_id", sessionID(s),
	)
	return item, h.saveItems(ctx)
}

// RemoveItem deletes an item. Private items can only be removed by a session
// acting as their owner; family items can be removed by anyone.
func (h *Household) RemoveItem(ctx context.Context, s *auth.Session, itemID int64) (err error) {
	defer func() { h.metrics.ObserveOperation("remove_item", err) }()

	h.mu.Lock()
	defer h.mu.Unlock()

	idx, ok := h.findItem(itemID)
	if !ok {
		return models.NewNotFoundError("item %d not found", itemID)
	}
	item := h.items[idx]
	if err := checkOwner(s, item); err != nil {
		return err
	}

	h.items = append(h.items[:idx:idx], h.items[idx+1:]...)

	h.logger.Info("Item removed", "item_id", itemID, "name", item.Name, "session_id", sessionID(s))
	err = h.saveItems(ctx)
	h.deletePhoto(ctx, item.Photo)
	return err
}

// UpdateItem applies patch to an item. The ownership rule of RemoveItem
// applies, and the patched item is validated like a new one.
func (h *Household) UpdateItem(ctx context.Context, s *auth.Session, itemID int64, patch ItemPatch) (_ models.Item, err error) {
	defer func() { h.metrics.ObserveOperation("update_item", err) }()

	h.mu.Lock()
	defer h.mu.Unlock()

	idx, ok := h.findItem(itemID)
	if !ok {
		return models.Item{}, models.NewNotFoundError("item %d not found", itemID)
	}
	item := h.items[idx]
	if err := checkOwner(s, item); err != nil {
		return models.Item{}, err
	}

	draft := ItemDraft{
		Name:        item.Name,
		Location:    item.Location,
		Category:    item.Category,
		Quantity:    item.Quantity,
		Description: item.Description,
		Visibility:  item.Visibility,
		Photo:       item.Photo,
	}
	if patch.Name != nil {
		draft.Name = *patch.Name
	}
	if patch.Location != nil {
		draft.Location = *patch.Location
	}
	if patch.Category != nil {
		draft.Category = *patch.Category
	}
	if patch.Quantity != nil {
		draft.Quantity = *patch.Quantity
	}
	if patch.Description != nil {
		draft.Description = *patch.Description
	}
	if patch.Photo != nil {
		draft.Photo = *patch.Photo
	}
	if err := h.normalize(&draft); err != nil {
		return models.Item{}, err
	}

	oldPhoto := item.Photo
	item.Name = draft.Name
	item.Location = draft.Location
	item.Category = draft.Category
	item.Quantity = draft.Quantity
	item.Description = draft.Description
	item.Photo = draft.Photo
	item.UpdatedAt = h.clock()
	h.items[idx] = item

	h.logger.Info("Item updated", "item_id", itemID, "session_id", sessionID(s))
	err = h.saveItems(ctx)
	if oldPhoto != item.Photo {
		h.deletePhoto(ctx, oldPhoto)
	}
	return item, err
}

// MarkFound records that an item was confirmed at its location. Only
// LastFoundAt changes.
func (h *Household) MarkFound(ctx context.Context, s *auth.Session, itemID int64) (_ models.Item, err error) {
	defer func() { h.metrics.ObserveOperation("mark_found", err) }()

	h.mu.Lock()
	defer h.mu.Unlock()

	idx, ok := h.findItem(itemID)
	if !ok {
		return models.Item{}, models.NewNotFoundError("item %d not found", itemID)
	}
	if !query.Visible(h.items[idx], s) {
		return models.Item{}, models.NewPermissionError("item %d is private", itemID)
	}

	now := h.clock()
	h.items[idx].LastFoundAt = &now
	item := h.items[idx]

	h.logger.Info("Item marked as found",
		"item_id", itemID,
		"name", item.Name,
		"location", item.Location,
		"session_id", sessionID(s),
	)
	return item, h.saveItems(ctx)
}

// checkOwner rejects changes to a private item by anyone but its owner.
func checkOwner(s *auth.Session, item models.Item) error {
	if !item.IsPrivate() {
		return nil
	}
	if s == nil || !s.Identity().Is(item.OwnerID) {
		return models.NewPermissionError("you can only change your own private items")
	}
	return nil
}

func sessionID(s *auth.Session) string {
	if s == nil {
		return ""
	}
	return s.ID()
}
