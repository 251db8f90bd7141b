package service

import (
	"fmt"
	"time"

	"github.com/akilaweerasekara/Home-Inventory/internal/auth"
	"github.com/akilaweerasekara/Home-Inventory/internal/models"
)

// Default member passwords. Members are expected to change them.
const (
	defaultAdminPassword = "admin123"
	defaultJohnPassword  = "john123"
	defaultJanePassword  = "jane123"
)

func defaultMembers(cred auth.Credential, now time.Time) ([]models.Member, error) {
	seed := []struct {
		member   models.Member
		password string
	}{
		{models.Member{ID: 1, Name: "Admin", Initials: "A", AvatarColor: "#4361ee", Role: models.RoleAdmin}, defaultAdminPassword},
		{models.Member{ID: 2, Name: "John", Initials: "J", AvatarColor: "#4ade80", Role: models.RoleMember}, defaultJohnPassword},
		{models.Member{ID: 3, Name: "Jane", Initials: "JA", AvatarColor: "#f59e0b", Role: models.RoleMember}, defaultJanePassword},
	}

	members := make([]models.Member, 0, len(seed))
	for _, s := range seed {
		hash, err := cred.Hash(s.password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash default password for %s: %w", s.member.Name, err)
		}
		m := s.member
		m.PasswordHash = hash
		m.CreatedAt = now
		members = append(members, m)
	}
	return members, nil
}

func defaultItems(now time.Time) []models.Item {
	return []models.Item{
		{
			ID:          1,
			Name:        "Toolbox",
			Location:    "Garage shelf - left side",
			Category:    models.CategoryTools,
			Quantity:    1,
			Description: "Complete toolbox with all essential tools",
			Visibility:  models.VisibilityFamily,
			OwnerID:     2,
			OwnerName:   "John",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          2,
			Name:        "First Aid Kit",
			Location:    "Kitchen cabinet above fridge",
			Category:    models.CategoryMedicine,
			Quantity:    1,
			Description: "Emergency medical supplies",
			Visibility:  models.VisibilityFamily,
			OwnerID:     3,
			OwnerName:   "Jane",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          3,
			Name:        "Passport",
			Location:    "Bedroom safe",
			Category:    models.CategoryDocuments,
			Quantity:    1,
			Description: "Personal passport",
			Visibility:  models.VisibilityPrivate,
			OwnerID:     2,
			OwnerName:   "John",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}
