package models

import "time"

// Category groups items by kind.
type Category string

const (
	CategoryDocuments   Category = "documents"
	CategoryTools       Category = "tools"
	CategoryElectronics Category = "electronics"
	CategoryKitchen     Category = "kitchen"
	CategoryClothing    Category = "clothing"
	CategoryMedicine    Category = "medicine"
	CategoryValuables   Category = "valuables"
	CategoryOther       Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryDocuments,
	CategoryTools,
	CategoryElectronics,
	CategoryKitchen,
	CategoryClothing,
	CategoryMedicine,
	CategoryValuables,
	CategoryOther,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Visibility decides who can see an item.
type Visibility string

const (
	// VisibilityFamily items are visible to every session.
	VisibilityFamily Visibility = "family"
	// VisibilityPrivate items are visible only to their owner's unlocked session.
	VisibilityPrivate Visibility = "private"
)

// Item represents something stored somewhere in the house.
type Item struct {
	// ID is a unique positive integer.
	ID int64 `json:"id"`

	// Name is what the item is (e.g., "Toolbox").
	Name string `json:"name"`

	// Location is where it is kept (e.g., "Garage shelf - left side").
	Location string `json:"location"`

	Category Category `json:"category"`

	// Quantity is a positive count.
	Quantity int `json:"quantity"`

	Description string `json:"description"`

	// Visibility is persisted as "type" for compatibility.
	Visibility Visibility `json:"type"`

	// OwnerID is the member who added the item, or GuestOwnerID.
	// Never GuestOwnerID for private items.
	OwnerID int64 `json:"addedBy"`

	// OwnerName is denormalized at creation for display only.
	OwnerName string `json:"addedByName"`

	// Photo is an opaque storable reference, empty when there is none.
	Photo string `json:"photo,omitempty"`

	// LastFoundAt is set when someone confirms the item is where it should be.
	LastFoundAt *time.Time `json:"lastFoundAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsPrivate reports whether the item is private.
func (i Item) IsPrivate() bool {
	return i.Visibility == VisibilityPrivate
}

// OwnedBy reports whether the item was added by the given member.
func (i Item) OwnedBy(memberID int64) bool {
	return memberID > 0 && i.OwnerID == memberID
}
