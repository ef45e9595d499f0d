package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consignpos/m/domain"
)

func named(name string) []domain.Item {
	return []domain.Item{{Name: name}}
}

func TestCache_BeginComplete(t *testing.T) {
	c := NewCache()

	_, ok := c.Get()
	assert.False(t, ok)

	gen := c.Begin()
	assert.True(t, c.Complete(gen, named("lamp")))

	items, ok := c.Get()
	require.True(t, ok)
	assert.Equal(t, "lamp", items[0].Name)
}

// A refresh that resolves after a newer one began is discarded, even though
// it finished last.
func TestCache_StaleRefreshDiscarded(t *testing.T) {
	c := NewCache()

	oldGen := c.Begin()
	newGen := c.Begin()

	assert.True(t, c.Complete(newGen, named("new")))
	assert.False(t, c.Complete(oldGen, named("old")))

	items, ok := c.Get()
	require.True(t, ok)
	assert.Equal(t, "new", items[0].Name)
}

func TestCache_InvalidateDropsSnapshotAndInFlight(t *testing.T) {
	c := NewCache()

	gen := c.Begin()
	require.True(t, c.Complete(gen, named("lamp")))

	inflight := c.Begin()
	c.Invalidate()

	_, ok := c.Get()
	assert.False(t, ok)

	// The refresh that was in flight when the mutation happened must not
	// repopulate the cache with pre-mutation data.
	assert.False(t, c.Complete(inflight, named("stale")))
	_, ok = c.Get()
	assert.False(t, ok)
}

func TestCache_CompleteTwiceSameGen(t *testing.T) {
	c := NewCache()
	gen := c.Begin()
	assert.True(t, c.Complete(gen, named("a")))
	// Same generation completing again is not stale; last write wins.
	assert.True(t, c.Complete(gen, named("b")))
	items, _ := c.Get()
	assert.Equal(t, "b", items[0].Name)
}
