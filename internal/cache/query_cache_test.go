package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetGetRemove(t *testing.T) {
	c := NewQueryCache()

	c.Set([]string{"human", "42"}, "alice")
	v, found := c.Get([]string{"human", "42"})
	assert.True(t, found)
	assert.Equal(t, "alice", v)

	c.Remove([]string{"human", "42"})
	_, found = c.Get([]string{"human", "42"})
	assert.False(t, found)
}

func TestOnChangeFiresForSetAndRemoveOnly(t *testing.T) {
	c := NewQueryCache()

	var fired [][]string
	c.OnChange(func(path []string) { fired = append(fired, path) })

	c.Set([]string{"org", "acme"}, 1)
	c.Remove([]string{"org", "acme"})
	c.Set([]string{"participants", "s1"}, 2)

	// Evictions apply foreign notices and must not re-broadcast.
	c.Evict([]string{"participants", "s1"})
	c.EvictMatching(func(path []string) bool { return true })

	assert.Equal(t, [][]string{
		{"org", "acme"},
		{"org", "acme"},
		{"participants", "s1"},
	}, fired)
}

func TestEvictMatching(t *testing.T) {
	c := NewQueryCache()
	c.Set([]string{"participants", "s1"}, 1)
	c.Set([]string{"participants", "s2"}, 2)
	c.Set([]string{"sessions", "recent"}, 3)

	c.EvictMatching(func(path []string) bool { return path[0] == "participants" })

	assert.Equal(t, 1, c.Len())
	_, found := c.Get([]string{"sessions", "recent"})
	assert.True(t, found)
}

func TestKeyPathsDoNotCollide(t *testing.T) {
	c := NewQueryCache()
	c.Set([]string{"a", "bc"}, 1)
	c.Set([]string{"ab", "c"}, 2)

	v, _ := c.Get([]string{"a", "bc"})
	assert.Equal(t, 1, v)
	v, _ = c.Get([]string{"ab", "c"})
	assert.Equal(t, 2, v)
}
