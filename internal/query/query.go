// Package query implements search, recent and listing over catalog items.
//
// Every function here is pure: it takes a snapshot of items and a viewer and
// returns a new slice. Input order is preserved unless a function sorts.
package query

import (
	"sort"
	"strings"

	"github.com/akilaweerasekara/Home-Inventory/internal/models"
)

// DefaultRecentLimit is the number of items Recent returns when no limit is given.
const DefaultRecentLimit = 6

// Viewer decides which private items are visible. *auth.Session implements it.
type Viewer interface {
	CanSeePrivate(ownerID int64) bool
}

// Filter narrows a search. Zero values match everything.
type Filter struct {
	Text     string
	Category models.Category
}

// Visible reports whether item passes the visibility gate for v.
// A nil viewer sees family items only.
func Visible(item models.Item, v Viewer) bool {
	if !item.IsPrivate() {
		return true
	}
	return v != nil && v.CanSeePrivate(item.OwnerID)
}

// Search returns the items visible to v that match f, in input order.
//
// The gates run in order and stop at the first failure:
// visibility, then category, then a case-insensitive substring match of the
// trimmed text against name, location, description or category.
func Search(items []models.Item, f Filter, v Viewer) []models.Item {
	text := strings.ToLower(strings.TrimSpace(f.Text))

	result := make([]models.Item, 0, len(items))
	for _, item := range items {
		if !Visible(item, v) {
			continue
		}
		if f.Category != "" && item.Category != f.Category {
			continue
		}
		if text != "" && !matchesText(item, text) {
			continue
		}
		result = append(result, item)
	}
	return result
}

func matchesText(item models.Item, text string) bool {
	for _, field := range []string{item.Name, item.Location, item.Description, string(item.Category)} {
		if strings.Contains(strings.ToLower(field), text) {
			return true
		}
	}
	return false
}

// Recent returns the newest items visible to v, newest first, at most limit
// of them. Items created at the same instant keep their input order.
// A limit of zero or less uses DefaultRecentLimit.
func Recent(items []models.Item, v Viewer, limit int) []models.Item {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	result := Search(items, Filter{}, v)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Family returns the family items in input order.
func Family(items []models.Item) []models.Item {
	result := make([]models.Item, 0, len(items))
	for _, item := range items {
		if !item.IsPrivate() {
			result = append(result, item)
		}
	}
	return result
}

// Private returns the private items visible to v in input order.
// It is empty unless v is unlocked.
func Private(items []models.Item, v Viewer) []models.Item {
	result := make([]models.Item, 0)
	for _, item := range items {
		if item.IsPrivate() && Visible(item, v) {
			result = append(result, item)
		}
	}
	return result
}
