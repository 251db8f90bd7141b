package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/akilaweerasekara/Home-Inventory/internal/models"
	"github.com/akilaweerasekara/Home-Inventory/internal/storage"
)

// BackupFilename returns the conventional file name for a backup taken at t.
func BackupFilename(t time.Time) string {
	return fmt.Sprintf("familysync-backup-%s.json", t.UTC().Format(time.DateOnly))
}

// Export snapshots every member, item and stored photo.
func (h *Household) Export(ctx context.Context) (_ models.Bundle, err error) {
	defer func() { h.metrics.ObserveOperation("export", err) }()

	h.mu.RLock()
	defer h.mu.RUnlock()

	bundle := models.Bundle{
		Users:      append([]models.Member{}, h.members...),
		Items:      append([]models.Item{}, h.items...),
		ExportDate: h.clock().UTC(),
	}

	for _, item := range h.items {
		id, ok := parsePhotoRef(item.Photo)
		if !ok {
			continue
		}
		data, found, err := h.store.LoadBlob(ctx, storage.PhotoKey(id))
		if err != nil {
			return models.Bundle{}, err
		}
		if !found {
			h.logger.Warn("Photo missing from store", "item_id", item.ID, "photo_id", id)
			continue
		}
		if bundle.Photos == nil {
			bundle.Photos = make(map[string][]byte)
		}
		bundle.Photos[item.Photo] = data
	}

	h.logger.Info("Exported household", "members", len(bundle.Users), "items", len(bundle.Items), "photos", len(bundle.Photos))
	return bundle, nil
}

// WriteBackup writes Export as indented JSON.
func (h *Household) WriteBackup(ctx context.Context, w io.Writer) error {
	bundle, err := h.Export(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// ParseBackup decodes a backup document. Both the users and the items list
// must be present.
func ParseBackup(r io.Reader) (models.Bundle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.Bundle{}, fmt.Errorf("failed to read backup: %w", err)
	}

	var bundle models.Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return models.Bundle{}, models.NewValidationError("error reading backup file: %v", err)
	}
	if bundle.Users == nil || bundle.Items == nil {
		return models.Bundle{}, models.NewValidationError("invalid backup file: users and items are required")
	}
	return bundle, nil
}

// Import replaces every member and item with the contents of bundle.
//
// Nothing is merged: the previous collections are discarded and ids are
// kept as they are, duplicates included. The caller is expected to have
// confirmed this with the user. The bundle is validated first and a rejected
// bundle leaves the household untouched. On success all sessions are locked.
func (h *Household) Import(ctx context.Context, bundle models.Bundle) (err error) {
	defer func() { h.metrics.ObserveOperation("import", err) }()

	if err := validateBundle(bundle); err != nil {
		h.logger.Warn("Import rejected", "error", err)
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.restorePhotos(ctx, bundle.Photos); err != nil {
		return err
	}

	oldItems := h.items
	h.members = append([]models.Member{}, bundle.Users...)
	h.items = append([]models.Item{}, bundle.Items...)
	h.lastMemberID = max(h.lastMemberID, maxMemberID(h.members))
	h.lastItemID = max(h.lastItemID, maxItemID(h.items))
	h.lockAllSessions()

	h.logger.Info("Imported household", "members", len(h.members), "items", len(h.items), "photos", len(bundle.Photos))

	err = errors.Join(h.saveMembers(ctx), h.saveItems(ctx))

	kept := make(map[string]bool, len(h.items))
	for _, item := range h.items {
		kept[item.Photo] = true
	}
	for _, item := range oldItems {
		if !kept[item.Photo] {
			h.deletePhoto(ctx, item.Photo)
		}
	}
	return err
}

// restorePhotos writes the bundle's photo blobs. When one fails, the blobs
// already written are deleted again unless a current item still uses them.
func (h *Household) restorePhotos(ctx context.Context, photos map[string][]byte) error {
	var written []string
	for ref, data := range photos {
		id, _ := parsePhotoRef(ref)
		if err := h.store.SaveBlob(ctx, storage.PhotoKey(id), data); err != nil {
			for _, w := range written {
				if !h.photoInUse(w) {
					h.deletePhoto(ctx, w)
				}
			}
			return err
		}
		written = append(written, ref)
	}
	return nil
}

// validateBundle checks the rules a bundle must meet before it replaces the
// household. Ids are taken as they are: web app backups can repeat an id after
// a delete, and new ids continue from the high-water mark anyway.
func validateBundle(b models.Bundle) error {
	if b.Users == nil || b.Items == nil {
		return models.NewValidationError("invalid backup file: users and items are required")
	}

	admins := 0
	for _, m := range b.Users {
		if m.IsAdmin() {
			admins++
		}
	}
	if admins > 1 {
		return models.NewValidationError("invalid backup file: expected at most one admin, found %d", admins)
	}

	for _, item := range b.Items {
		if item.IsPrivate() && item.OwnerID == 0 {
			return models.NewValidationError("invalid backup file: private item %d has no owner", item.ID)
		}
	}

	for ref, data := range b.Photos {
		if _, ok := parsePhotoRef(ref); !ok {
			return models.NewValidationError("invalid backup file: bad photo reference %q", ref)
		}
		if err := checkPhoto(data); err != nil {
			return err
		}
	}
	return nil
}
