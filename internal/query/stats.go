package query

import "github.com/akilaweerasekara/Home-Inventory/internal/models"

// Stats summarizes the whole catalog for a dashboard.
type Stats struct {
	// Total counts every item, private ones included.
	Total int
	// Family counts family items.
	Family int
	// Private counts private items of all members.
	Private int
	// Categories counts distinct categories in use.
	Categories int
}

// Summarize computes Stats over items.
func Summarize(items []models.Item) Stats {
	var stats Stats
	seen := make(map[models.Category]bool)

	for _, item := range items {
		stats.Total++
		if item.IsPrivate() {
			stats.Private++
		} else {
			stats.Family++
		}
		if !seen[item.Category] {
			seen[item.Category] = true
			stats.Categories++
		}
	}
	return stats
}
