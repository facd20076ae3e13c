package broadcast

import (
	"context"
	"testing"
	"time"

	"notesync-core/internal/cache"
	"notesync-core/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testWindow struct {
	label string
	cache *cache.QueryCache
	bus   *GoChannelBus
}

func newWindows(transport *gochannel.GoChannel, labels ...string) []*testWindow {
	windows := make([]*testWindow, len(labels))
	for i, label := range labels {
		windows[i] = &testWindow{
			label: label,
			cache: cache.NewQueryCache(),
			bus:   NewGoChannelBus(transport),
		}
	}
	return windows
}

// attach wires the invalidators after the caches were seeded, so the
// seeding itself does not broadcast.
func attach(t *testing.T, windows ...*testWindow) {
	t.Helper()
	log := logger.NewNopLogger()
	for _, w := range windows {
		inv := NewInvalidator(w.label, w.cache, w.bus, log)
		detach, err := inv.Attach()
		require.NoError(t, err)
		t.Cleanup(detach)
		t.Cleanup(func() { w.bus.Close() })
	}
}

func TestSelfEventsAreSuppressed(t *testing.T) {
	transport := NewGoChannelTransport()
	ws := newWindows(transport, "main", "note-detail")
	a, b := ws[0], ws[1]

	a.cache.Set([]string{"human", "42"}, "alice")
	b.cache.Set([]string{"human", "42"}, "alice")
	b.cache.Set([]string{"participants", "s1"}, []string{"alice"})
	attach(t, a, b)

	a.cache.Set([]string{"human", "42"}, "alice v2")

	// The foreign window evicts its copy and its participant lists.
	require.Eventually(t, func() bool {
		_, foundHuman := b.cache.Get([]string{"human", "42"})
		_, foundParts := b.cache.Get([]string{"participants", "s1"})
		return !foundHuman && !foundParts
	}, time.Second, 5*time.Millisecond)

	// The emitting window keeps its own entry.
	_, found := a.cache.Get([]string{"human", "42"})
	assert.True(t, found, "a window never invalidates itself from its own publish")
}

func TestProfileKeyInvalidatesPeopleCaches(t *testing.T) {
	transport := NewGoChannelTransport()
	ws := newWindows(transport, "main", "note-detail")
	a, b := ws[0], ws[1]

	b.cache.Set([]string{"participants", "s1"}, "x")
	b.cache.Set([]string{"human", "7"}, "x")
	b.cache.Set([]string{"org", "acme"}, "x")
	b.cache.Set([]string{"sessions", "recent"}, "x")
	attach(t, a, b)

	a.cache.Set([]string{"profile", "me"}, "updated")

	require.Eventually(t, func() bool {
		_, p := b.cache.Get([]string{"participants", "s1"})
		_, h := b.cache.Get([]string{"human", "7"})
		_, o := b.cache.Get([]string{"org", "acme"})
		return !p && !h && !o
	}, time.Second, 5*time.Millisecond)

	_, found := b.cache.Get([]string{"sessions", "recent"})
	assert.True(t, found, "unrelated topics survive a profile invalidation")
}

func TestOrgKeyEvictsOnlyThatOrg(t *testing.T) {
	transport := NewGoChannelTransport()
	ws := newWindows(transport, "main", "note-detail")
	a, b := ws[0], ws[1]

	b.cache.Set([]string{"org", "acme"}, "x")
	b.cache.Set([]string{"org", "globex"}, "x")
	attach(t, a, b)

	a.cache.Set([]string{"org", "acme"}, "renamed")

	require.Eventually(t, func() bool {
		_, found := b.cache.Get([]string{"org", "acme"})
		return !found
	}, time.Second, 5*time.Millisecond)

	_, found := b.cache.Get([]string{"org", "globex"})
	assert.True(t, found)
}

func TestAbsentIdentityIsForeign(t *testing.T) {
	transport := NewGoChannelTransport()
	ws := newWindows(transport, "main", "note-detail")
	a, b := ws[0], ws[1]

	a.cache.Set([]string{"org", "acme"}, "x")
	b.cache.Set([]string{"org", "acme"}, "x")
	attach(t, a, b)

	// An event with no window identity must never be self-suppressed.
	require.NoError(t, a.bus.Publish(context.Background(), Event{Key: []string{"org", "acme"}}))

	require.Eventually(t, func() bool {
		_, foundA := a.cache.Get([]string{"org", "acme"})
		_, foundB := b.cache.Get([]string{"org", "acme"})
		return !foundA && !foundB
	}, time.Second, 5*time.Millisecond)
}

func TestCacheRemovalBroadcasts(t *testing.T) {
	transport := NewGoChannelTransport()
	ws := newWindows(transport, "main", "note-detail")
	a, b := ws[0], ws[1]

	a.cache.Set([]string{"org", "acme"}, "x")
	b.cache.Set([]string{"org", "acme"}, "x")
	attach(t, a, b)

	a.cache.Remove([]string{"org", "acme"})

	require.Eventually(t, func() bool {
		_, found := b.cache.Get([]string{"org", "acme"})
		return !found
	}, time.Second, 5*time.Millisecond)
}
