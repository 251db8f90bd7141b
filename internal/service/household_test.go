package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akilaweerasekara/Home-Inventory/internal/auth"
	"github.com/akilaweerasekara/Home-Inventory/internal/metrics"
	"github.com/akilaweerasekara/Home-Inventory/internal/models"
	"github.com/akilaweerasekara/Home-Inventory/internal/storage"
	"github.com/akilaweerasekara/Home-Inventory/internal/storage/memory"
)

const (
	adminID int64 = 1
	johnID  int64 = 2
	janeID  int64 = 3

	bcryptTestCost = 4

	toolboxID  int64 = 1
	firstAidID int64 = 2
	passportID int64 = 3
)

// testClock returns increasing UTC timestamps, one minute apart.
func testClock() func() time.Time {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

type fixture struct {
	h        *Household
	provider *memory.Provider
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	p := memory.New()
	return openFixture(t, p, opts...)
}

func openFixture(t *testing.T, p *memory.Provider, opts ...Option) fixture {
	t.Helper()
	m := metrics.New()
	opts = append([]Option{WithClock(testClock()), WithMetrics(m)}, opts...)
	h, err := Open(context.Background(), storage.New(p, nil, m), opts...)
	require.NoError(t, err)
	return fixture{h: h, provider: p, metrics: m}
}

func itemIDs(items []models.Item) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func memberIDs(members []models.Member) []int64 {
	out := make([]int64, 0, len(members))
	for _, m := range members {
		out = append(out, m.ID)
	}
	return out
}

func TestOpenSeedsDefaults(t *testing.T) {
	f := newFixture(t)

	members := f.h.ListMembers()
	require.Len(t, members, 3)
	assert.Equal(t, "Admin", members[0].Name)
	assert.Equal(t, models.RoleAdmin, members[0].Role)
	assert.Equal(t, "-969161597", members[0].PasswordHash)
	assert.Equal(t, "J", members[1].Initials)
	assert.Equal(t, "JA", members[2].Initials)

	items := f.h.ListAll()
	assert.Equal(t, []int64{toolboxID, firstAidID, passportID}, itemIDs(items))
	assert.True(t, items[2].IsPrivate())
	assert.Equal(t, johnID, items[2].OwnerID)

	// Seeds are written through
	var stored []models.Member
	require.True(t, storage.New(f.provider, nil, nil).Load(context.Background(), storage.KeyUsers, &stored))
	assert.Len(t, stored, 3)

	expected := `
# HELP familysync_members Registered members.
# TYPE familysync_members gauge
familysync_members 3
`
	assert.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(expected), metrics.MetricMembers))
}

func TestOpenLoadsExistingState(t *testing.T) {
	ctx := context.Background()
	p := memory.New()
	first := openFixture(t, p)

	_, err := first.h.AddMember(ctx, "Grandma", "knitting")
	require.NoError(t, err)
	_, err = first.h.AddItem(ctx, nil, ItemDraft{Name: "Ladder", Location: "Shed"}, models.GuestIdentity())
	require.NoError(t, err)

	second := openFixture(t, p)
	assert.Equal(t, memberIDs(first.h.ListMembers()), memberIDs(second.h.ListMembers()))
	assert.Equal(t, itemIDs(first.h.ListAll()), itemIDs(second.h.ListAll()))
}

func TestOpenReseedsCorruptData(t *testing.T) {
	ctx := context.Background()
	p := memory.New()
	require.NoError(t, p.Set(ctx, storage.KeyUsers, []byte("not json")))
	require.NoError(t, p.Set(ctx, storage.KeyItems, []byte(`{"broken":`)))

	f := openFixture(t, p)
	assert.Len(t, f.h.ListMembers(), 3)
	assert.Len(t, f.h.ListAll(), 3)
}

func TestOpenKeepsEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	p := memory.New()
	require.NoError(t, p.Set(ctx, storage.KeyItems, []byte("[]")))

	f := openFixture(t, p)
	assert.Empty(t, f.h.ListAll())
	assert.Len(t, f.h.ListMembers(), 3)
}

func TestOpenWithBcrypt(t *testing.T) {
	cred := auth.Fallback{Primary: auth.Bcrypt{Cost: bcryptTestCost}, Legacy: auth.Checksum{}}
	f := newFixture(t, WithCredential(cred))

	admin, ok := f.h.Member(adminID)
	require.True(t, ok)
	assert.NotEqual(t, "-969161597", admin.PasswordHash)

	s := f.h.NewSession()
	require.NoError(t, f.h.Unlock(context.Background(), s, adminID, "admin123"))
}

func TestUnlockScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.h.NewSession()

	err := f.h.Unlock(ctx, s, johnID, "wrong")
	assert.ErrorIs(t, err, models.ErrAuth)
	assert.False(t, s.PrivateAccessGranted())
	assert.True(t, s.Identity().IsGuest())

	require.NoError(t, f.h.Unlock(ctx, s, johnID, "john123"))
	assert.True(t, s.PrivateAccessGranted())
	id, ok := s.Unlocked()
	assert.True(t, ok)
	assert.Equal(t, johnID, id)

	expected := `
# HELP familysync_unlock_attempts_total Private access unlock attempts by result kind.
# TYPE familysync_unlock_attempts_total counter
familysync_unlock_attempts_total{result="auth"} 1
familysync_unlock_attempts_total{result="ok"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(expected), metrics.MetricUnlockAttemptsTotal))
}

func TestUnlockValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.h.NewSession()

	assert.ErrorIs(t, f.h.Unlock(ctx, s, 0, "john123"), models.ErrValidation)
	assert.ErrorIs(t, f.h.Unlock(ctx, s, 99, "john123"), models.ErrValidation)
	assert.ErrorIs(t, f.h.Unlock(ctx, s, johnID, ""), models.ErrValidation)
	assert.False(t, s.PrivateAccessGranted())
}

func TestUnlockSwitchAndLock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.h.NewSession()

	require.NoError(t, f.h.Unlock(ctx, s, johnID, "john123"))

	// A failed switch keeps John unlocked
	assert.ErrorIs(t, f.h.Unlock(ctx, s, janeID, "john123"), models.ErrAuth)
	assert.True(t, s.Identity().Is(johnID))

	require.NoError(t, f.h.Unlock(ctx, s, janeID, "jane123"))
	assert.True(t, s.Identity().Is(janeID))

	f.h.Lock(s)
	assert.False(t, s.PrivateAccessGranted())
	assert.True(t, s.Identity().IsGuest())
}

func TestEndSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := f.h.NewSession()
	require.NoError(t, f.h.Unlock(ctx, s, johnID, "john123"))

	f.h.EndSession(s)
	assert.False(t, s.PrivateAccessGranted())

	f.h.mu.RLock()
	_, tracked := f.h.sessions[s.ID()]
	f.h.mu.RUnlock()
	assert.False(t, tracked)
}
