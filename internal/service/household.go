// Package service implements the FamilySync household: the member directory,
// the item catalog, access sessions and backup import/export.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/akilaweerasekara/Home-Inventory/internal/auth"
	"github.com/akilaweerasekara/Home-Inventory/internal/metrics"
	"github.com/akilaweerasekara/Home-Inventory/internal/models"
	"github.com/akilaweerasekara/Home-Inventory/internal/storage"
)

// Household owns the member and item collections.
//
// Every mutation updates memory first and then writes the whole affected
// collection through to the store. When a write fails the operation returns
// a storage error, but the in-memory state has already advanced and stays
// authoritative for the rest of the process.
//
// A Household is safe for concurrent use.
type Household struct {
	mu sync.RWMutex

	store    *storage.Store
	cred     auth.Credential
	clock    func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate

	members []models.Member
	items   []models.Item

	// High-water marks. IDs above these have never been handed out.
	lastMemberID int64
	lastItemID   int64

	sessions map[string]*auth.Session
}

// Option configures a Household.
type Option func(*Household)

// WithClock sets the time source used for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(h *Household) {
		h.clock = clock
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Household) {
		h.logger = logger
	}
}

// WithMetrics enables metrics collection.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Household) {
		h.metrics = m
	}
}

// WithCredential sets how passwords are hashed and verified.
// The default is the legacy checksum.
func WithCredential(cred auth.Credential) Option {
	return func(h *Household) {
		h.cred = cred
	}
}

// Open loads the household from store, seeding default members and items for
// any collection that is missing or unreadable.
func Open(ctx context.Context, store *storage.Store, opts ...Option) (*Household, error) {
	h := &Household{
		store:    store,
		cred:     auth.Checksum{},
		clock:    time.Now,
		logger:   slog.Default(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		sessions: make(map[string]*auth.Session),
	}
	for _, opt := range opts {
		opt(h)
	}

	if err := h.load(ctx); err != nil {
		return nil, err
	}

	h.logger.Info("Household opened",
		"members", len(h.members),
		"items", len(h.items),
	)
	return h, nil
}

func (h *Household) load(ctx context.Context) error {
	now := h.clock()

	var members []models.Member
	if !h.store.Load(ctx, storage.KeyUsers, &members) || len(members) == 0 {
		seeded, err := defaultMembers(h.cred, now)
		if err != nil {
			return err
		}
		members = seeded
		h.logger.Info("Seeding default members", "count", len(members))
		if err := h.store.Save(ctx, storage.KeyUsers, members); err != nil {
			h.logger.Warn("Failed to persist seeded members", "error", err)
		}
	}

	var items []models.Item
	if !h.store.Load(ctx, storage.KeyItems, &items) || items == nil {
		items = defaultItems(now)
		h.logger.Info("Seeding sample items", "count", len(items))
		if err := h.store.Save(ctx, storage.KeyItems, items); err != nil {
			h.logger.Warn("Failed to persist seeded items", "error", err)
		}
	}

	h.members = members
	h.items = items
	h.lastMemberID = maxMemberID(members)
	h.lastItemID = maxItemID(items)
	h.updateGauges()
	return nil
}

// NewSession starts a Locked session bound to this household.
func (h *Household) NewSession() *auth.Session {
	s := auth.NewSession(h.cred)

	h.mu.Lock()
	h.sessions[s.ID()] = s
	h.mu.Unlock()

	h.logger.Debug("Session started", "session_id", s.ID())
	return s
}

// EndSession locks s and stops tracking it.
func (h *Household) EndSession(s *auth.Session) {
	s.Lock()

	h.mu.Lock()
	delete(h.sessions, s.ID())
	h.mu.Unlock()

	h.logger.Debug("Session ended", "session_id", s.ID())
}

// Unlock verifies password for the member and unlocks s for them.
// An unknown member is reported as no member selected.
func (h *Household) Unlock(ctx context.Context, s *auth.Session, memberID int64, password string) error {
	var member *models.Member
	h.mu.RLock()
	if m, ok := h.findMember(memberID); ok {
		member = &m
	}
	h.mu.RUnlock()

	err := s.Unlock(member, password)
	h.metrics.ObserveUnlock(err)
	if err != nil {
		h.logger.Warn("Unlock failed", "session_id", s.ID(), "member_id", memberID, "error", err)
		return err
	}

	h.logger.Info("Private access unlocked", "session_id", s.ID(), "member_id", memberID)
	return nil
}

// Lock returns s to Guest.
func (h *Household) Lock(s *auth.Session) {
	s.Lock()
	h.logger.Info("Private access locked", "session_id", s.ID())
}

// revokeSessions locks every tracked session unlocked for memberID.
// Callers hold h.mu.
func (h *Household) revokeSessions(memberID int64) {
	for id, s := range h.sessions {
		if s.Revoke(memberID) {
			h.logger.Info("Session locked", "session_id", id, "member_id", memberID)
		}
	}
}

// lockAllSessions locks every tracked session. Callers hold h.mu.
func (h *Household) lockAllSessions() {
	for _, s := range h.sessions {
		s.Lock()
	}
}

func (h *Household) findMember(id int64) (models.Member, bool) {
	for _, m := range h.members {
		if m.ID == id {
			return m, true
		}
	}
	return models.Member{}, false
}

func (h *Household) findItem(id int64) (int, bool) {
	for i, item := range h.items {
		if item.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (h *Household) nextMemberID() int64 {
	h.lastMemberID = max(h.lastMemberID, maxMemberID(h.members)) + 1
	return h.lastMemberID
}

func (h *Household) nextItemID() int64 {
	h.lastItemID = max(h.lastItemID, maxItemID(h.items)) + 1
	return h.lastItemID
}

func (h *Household) saveMembers(ctx context.Context) error {
	h.updateGauges()
	return h.store.Save(ctx, storage.KeyUsers, h.members)
}

func (h *Household) saveItems(ctx context.Context) error {
	h.updateGauges()
	return h.store.Save(ctx, storage.KeyItems, h.items)
}

func (h *Household) updateGauges() {
	var private int
	for _, item := range h.items {
		if item.IsPrivate() {
			private++
		}
	}
	h.metrics.SetInventory(len(h.members), len(h.items)-private, private)
}

func maxMemberID(members []models.Member) int64 {
	var id int64
	for _, m := range members {
		id = max(id, m.ID)
	}
	return id
}

func maxItemID(items []models.Item) int64 {
	var id int64
	for _, item := range items {
		id = max(id, item.ID)
	}
	return id
}
