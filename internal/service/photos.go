package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/akilaweerasekara/Home-Inventory/internal/models"
	"github.com/akilaweerasekara/Home-Inventory/internal/storage"
)

// MaxPhotoSize is the largest photo StorePhoto accepts.
const MaxPhotoSize = 5 << 20

// PhotoRefPrefix prefixes references returned by StorePhoto.
const PhotoRefPrefix = "photo:"

// StorePhoto saves photo bytes and returns a reference to put in
// ItemDraft.Photo.
func (h *Household) StorePhoto(ctx context.Context, data []byte) (_ string, err error) {
	defer func() { h.metrics.ObserveOperation("store_photo", err) }()

	if err := checkPhoto(data); err != nil {
		return "", err
	}

	id := uuid.NewString()
	if err := h.store.SaveBlob(ctx, storage.PhotoKey(id), data); err != nil {
		return "", err
	}

	h.logger.Info("Photo stored", "photo_id", id, "bytes", len(data))
	return PhotoRefPrefix + id, nil
}

// Photo loads the bytes behind a reference returned by StorePhoto.
func (h *Household) Photo(ctx context.Context, ref string) ([]byte, error) {
	id, ok := parsePhotoRef(ref)
	if !ok {
		return nil, models.NewValidationError("%q is not a stored photo", ref)
	}

	data, found, err := h.store.LoadBlob(ctx, storage.PhotoKey(id))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.NewNotFoundError("photo %s not found", id)
	}
	return data, nil
}

// DiscardPhoto deletes a photo stored with StorePhoto that did not end up on
// an item, for example because AddItem failed. Photos still referenced by an
// item are kept.
func (h *Household) DiscardPhoto(ctx context.Context, ref string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.photoInUse(ref) {
		return
	}
	h.deletePhoto(ctx, ref)
}

// photoInUse reports whether any item references ref. Callers hold h.mu.
func (h *Household) photoInUse(ref string) bool {
	for _, item := range h.items {
		if item.Photo == ref {
			return true
		}
	}
	return false
}

// deletePhoto removes the blob behind ref, if ref is a stored photo.
// Failures leave an orphaned blob and are only logged.
func (h *Household) deletePhoto(ctx context.Context, ref string) {
	id, ok := parsePhotoRef(ref)
	if !ok {
		return
	}
	if err := h.store.Delete(ctx, storage.PhotoKey(id)); err != nil {
		h.logger.Warn("Failed to delete photo", "photo_id", id, "error", err)
	}
}

func checkPhoto(data []byte) error {
	if len(data) == 0 {
		return models.NewValidationError("photo is empty")
	}
	if len(data) > MaxPhotoSize {
		return models.NewValidationError("photo must be less than 5MB")
	}
	return nil
}

func parsePhotoRef(ref string) (string, bool) {
	id, ok := strings.CutPrefix(ref, PhotoRefPrefix)
	if !ok {
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
