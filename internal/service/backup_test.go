package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akilaweerasekara/Home-Inventory/internal/models"
	"github.com/akilaweerasekara/Home-Inventory/internal/storage"
	"github.com/akilaweerasekara/Home-Inventory/internal/storage/memory"
)

func TestBackupFilename(t *testing.T) {
	ts := time.Date(2024, 12, 31, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))
	assert.Equal(t, "familysync-backup-2025-01-01.json", BackupFilename(ts))
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newFixture(t)

	s := src.h.NewSession()
	require.NoError(t, src.h.Unlock(ctx, s, janeID, "jane123"))
	ref, err := src.h.StorePhoto(ctx, []byte("jpeg bytes"))
	require.NoError(t, err)
	jane, _ := src.h.Member(janeID)
	_, err = src.h.AddItem(ctx, s, ItemDraft{
		Name:       "Necklace",
		Location:   "Jewelry box",
		Category:   models.CategoryValuables,
		Visibility: models.VisibilityPrivate,
		Photo:      ref,
	}, models.MemberIdentity(jane))
	require.NoError(t, err)
	_, err = src.h.MarkFound(ctx, s, toolboxID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.h.WriteBackup(ctx, &buf))
	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \"users\": ["), "indented with two spaces")

	bundle, err := ParseBackup(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), bundle.Photos[ref])

	dst := newFixture(t)
	require.NoError(t, dst.h.Import(ctx, bundle))

	if diff := cmp.Diff(src.h.ListMembers(), dst.h.ListMembers()); diff != "" {
		t.Errorf("members mismatch (-src +dst):\n%s", diff)
	}
	if diff := cmp.Diff(src.h.ListAll(), dst.h.ListAll()); diff != "" {
		t.Errorf("items mismatch (-src +dst):\n%s", diff)
	}

	photo, err := dst.h.Photo(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), photo)

	// Persisted
	reopened := openFixture(t, dst.provider)
	assert.Equal(t, itemIDs(src.h.ListAll()), itemIDs(reopened.h.ListAll()))
}

func TestImportReplacesState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.h.NewSession()
	require.NoError(t, f.h.Unlock(ctx, s, johnID, "john123"))

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bundle := models.Bundle{
		Users: []models.Member{
			{ID: 10, Name: "Root", Role: models.RoleAdmin, PasswordHash: "0", CreatedAt: now},
			{ID: 20, Name: "Kid", Role: models.RoleMember, PasswordHash: "0", CreatedAt: now},
		},
		Items: []models.Item{
			{ID: 50, Name: "Bike", Location: "Garage", Category: models.CategoryOther, Quantity: 1,
				Visibility: models.VisibilityFamily, OwnerID: 20, OwnerName: "Kid", CreatedAt: now, UpdatedAt: now},
		},
		ExportDate: now,
	}
	require.NoError(t, f.h.Import(ctx, bundle))

	assert.Equal(t, []int64{10, 20}, memberIDs(f.h.ListMembers()))
	assert.Equal(t, []int64{50}, itemIDs(f.h.ListAll()))
	assert.False(t, s.PrivateAccessGranted(), "import locks sessions")

	item, err := f.h.AddItem(ctx, s, ItemDraft{Name: "Helmet", Location: "Garage"}, models.GuestIdentity())
	require.NoError(t, err)
	assert.Equal(t, int64(51), item.ID)

	m, err := f.h.AddMember(ctx, "Teen", "teen1")
	require.NoError(t, err)
	assert.Equal(t, int64(21), m.ID)
}

func TestImportKeepsHighWaterMark(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		_, err := f.h.AddItem(ctx, nil, ItemDraft{Name: "Box", Location: "Attic"}, models.GuestIdentity())
		require.NoError(t, err)
	}

	bundle, err := f.h.Export(ctx)
	require.NoError(t, err)
	bundle.Items = bundle.Items[:1]
	require.NoError(t, f.h.Import(ctx, bundle))

	item, err := f.h.AddItem(ctx, nil, ItemDraft{Name: "Lamp", Location: "Attic"}, models.GuestIdentity())
	require.NoError(t, err)
	assert.Equal(t, int64(7), item.ID)
}

func TestImportRejectsInvalidBundle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	admin := models.Member{ID: 1, Name: "Admin", Role: models.RoleAdmin}
	member := models.Member{ID: 2, Name: "Kid", Role: models.RoleMember}

	tests := []struct {
		name   string
		bundle models.Bundle
	}{
		{"missing users", models.Bundle{Items: []models.Item{}}},
		{"missing items", models.Bundle{Users: []models.Member{admin}}},
		{"two admins", models.Bundle{Users: []models.Member{admin, member, {ID: 3, Name: "Other", Role: models.RoleAdmin}}, Items: []models.Item{}}},
		{"private item owned by guest", models.Bundle{Users: []models.Member{admin}, Items: []models.Item{
			{ID: 1, Name: "A", Visibility: models.VisibilityPrivate, OwnerID: 0, CreatedAt: now},
		}}},
		{"bad photo reference", models.Bundle{Users: []models.Member{admin}, Items: []models.Item{},
			Photos: map[string][]byte{"file.jpg": []byte("x")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			s := f.h.NewSession()
			require.NoError(t, f.h.Unlock(ctx, s, johnID, "john123"))
			beforeMembers := f.h.ListMembers()
			beforeItems := f.h.ListAll()

			err := f.h.Import(ctx, tt.bundle)
			assert.ErrorIs(t, err, models.ErrValidation)
			assert.Equal(t, beforeMembers, f.h.ListMembers())
			assert.Equal(t, beforeItems, f.h.ListAll())
			assert.True(t, s.PrivateAccessGranted(), "rejected import keeps sessions")
		})
	}
}

func TestImportAcceptsLenientBundles(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	admin := models.Member{ID: 1, Name: "Admin", Role: models.RoleAdmin, CreatedAt: now}
	member := models.Member{ID: 2, Name: "Kid", Role: models.RoleMember, CreatedAt: now}

	tests := []struct {
		name   string
		bundle models.Bundle
	}{
		{"no admin", models.Bundle{Users: []models.Member{member}, Items: []models.Item{}}},
		{"duplicate member ids", models.Bundle{Users: []models.Member{admin, member, {ID: 2, Name: "Twin", CreatedAt: now}}, Items: []models.Item{}}},
		{"private item with owner outside bundle", models.Bundle{Users: []models.Member{admin}, Items: []models.Item{
			{ID: 1, Name: "A", Visibility: models.VisibilityPrivate, OwnerID: 7, CreatedAt: now},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.h.Import(ctx, tt.bundle))
			assert.Equal(t, memberIDs(tt.bundle.Users), memberIDs(f.h.ListMembers()))
			assert.Equal(t, itemIDs(tt.bundle.Items), itemIDs(f.h.ListAll()))
		})
	}
}

func TestImportWebAppBackupWithDuplicateIDs(t *testing.T) {
	ctx := context.Background()

	// The web app numbers new items len(items)+1, so deleting item 2 and
	// adding another one reuses id 3.
	doc := `{
  "users": [
    {"id": 1, "name": "Admin", "initials": "A", "avatarColor": "#4361ee", "role": "admin",
     "passwordHash": "-969161597", "createdAt": "2024-02-01T10:00:00.000Z"}
  ],
  "items": [
    {"id": 1, "name": "Toolbox", "location": "Garage", "category": "tools", "quantity": 1,
     "type": "family", "addedBy": 0, "addedByName": "Guest",
     "createdAt": "2024-02-01T10:00:00.000Z", "updatedAt": "2024-02-01T10:00:00.000Z"},
    {"id": 3, "name": "Ladder", "location": "Shed", "category": "tools", "quantity": 1,
     "type": "family", "addedBy": 0, "addedByName": "Guest",
     "createdAt": "2024-02-02T10:00:00.000Z", "updatedAt": "2024-02-02T10:00:00.000Z"},
    {"id": 3, "name": "Blanket", "location": "Closet", "category": "other", "quantity": 2,
     "type": "family", "addedBy": 1, "addedByName": "Admin",
     "createdAt": "2024-02-03T10:00:00.000Z", "updatedAt": "2024-02-03T10:00:00.000Z"}
  ],
  "exportDate": "2024-02-04T08:00:00.000Z"
}`
	bundle, err := ParseBackup(strings.NewReader(doc))
	require.NoError(t, err)

	f := newFixture(t)
	require.NoError(t, f.h.Import(ctx, bundle))
	assert.Equal(t, []int64{1, 3, 3}, itemIDs(f.h.ListAll()))

	// Exporting and importing again keeps the data as is.
	exported, err := f.h.Export(ctx)
	require.NoError(t, err)
	dst := newFixture(t)
	require.NoError(t, dst.h.Import(ctx, exported))
	if diff := cmp.Diff(f.h.ListAll(), dst.h.ListAll()); diff != "" {
		t.Errorf("items mismatch (-src +dst):\n%s", diff)
	}

	item, err := f.h.AddItem(ctx, nil, ItemDraft{Name: "Lamp", Location: "Attic"}, models.GuestIdentity())
	require.NoError(t, err)
	assert.Equal(t, int64(4), item.ID)
}

// blobFailingProvider fails writes to one photo key.
type blobFailingProvider struct {
	*memory.Provider
	failKey string
}

func (p blobFailingProvider) Set(ctx context.Context, key string, value []byte) error {
	if key == p.failKey {
		return errors.New("disk full")
	}
	return p.Provider.Set(ctx, key, value)
}

func TestImportPhotoFailureRemovesWrittenPhotos(t *testing.T) {
	ctx := context.Background()
	okRef := PhotoRefPrefix + "0b7e3a5c-8c8e-4a3e-9a57-2f2b7c1d0e11"
	badRef := PhotoRefPrefix + "5f0c2a8e-1d4b-4c6e-8f3a-9b2d7e6c1a04"
	bad, _ := parsePhotoRef(badRef)

	p := blobFailingProvider{Provider: memory.New(), failKey: storage.PhotoKey(bad)}
	h, err := Open(ctx, storage.New(p, nil, nil), WithClock(testClock()))
	require.NoError(t, err)
	before := h.ListAll()

	bundle, err := h.Export(ctx)
	require.NoError(t, err)
	bundle.Photos = map[string][]byte{okRef: []byte("one"), badRef: []byte("two")}

	err = h.Import(ctx, bundle)
	assert.ErrorIs(t, err, models.ErrStorage)
	assert.Equal(t, before, h.ListAll())

	keys, err := p.Keys(ctx, storage.PhotoKeyPrefix)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestParseBackup(t *testing.T) {
	t.Run("web app backup", func(t *testing.T) {
		doc := `{
  "users": [
    {"id": 1, "name": "Admin", "initials": "A", "avatarColor": "#4361ee", "role": "admin",
     "passwordHash": "-969161597", "createdAt": "2024-02-01T10:00:00.000Z"}
  ],
  "items": [
    {"id": 1, "name": "Toolbox", "location": "Garage", "category": "tools", "quantity": 1,
     "description": "", "type": "family", "addedBy": 0, "addedByName": "Guest", "photo": null,
     "createdAt": "2024-02-01T10:00:00.000Z", "updatedAt": "2024-02-01T10:00:00.000Z"}
  ],
  "exportDate": "2024-02-02T08:00:00.000Z"
}`
		bundle, err := ParseBackup(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, bundle.Users, 1)
		require.Len(t, bundle.Items, 1)
		assert.Equal(t, models.VisibilityFamily, bundle.Items[0].Visibility)
		assert.Equal(t, "", bundle.Items[0].Photo)
		assert.Equal(t, 2024, bundle.ExportDate.Year())

		f := newFixture(t)
		require.NoError(t, f.h.Import(context.Background(), bundle))
		assert.NoError(t, f.h.Unlock(context.Background(), f.h.NewSession(), 1, "admin123"))
	})

	tests := []struct {
		name string
		doc  string
	}{
		{"not json", "this is not a backup"},
		{"missing items", `{"users": []}`},
		{"null users", `{"users": null, "items": []}`},
		{"empty object", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBackup(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}
