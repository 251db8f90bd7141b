package service

import (
	"github.com/akilaweerasekara/Home-Inventory/internal/auth"
	"github.com/akilaweerasekara/Home-Inventory/internal/models"
	"github.com/akilaweerasekara/Home-Inventory/internal/query"
)

// Search returns the items visible to s that match f, in catalog order.
func (h *Household) Search(s *auth.Session, f query.Filter) []models.Item {
	h.mu.RLock()
	defer h.mu.RUnlock()

	results := query.Search(h.items, f, s)
	h.logger.Debug("Search", "text", f.Text, "category", f.Category, "results", len(results), "session_id", sessionID(s))
	return results
}

// Recent returns the newest items visible to s, newest first.
// A limit of zero or less uses query.DefaultRecentLimit.
func (h *Household) Recent(s *auth.Session, limit int) []models.Item {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return query.Recent(h.items, s, limit)
}

// Stats summarizes the catalog.
func (h *Household) Stats() query.Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return query.Summarize(h.items)
}
