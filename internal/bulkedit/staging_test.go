package bulkedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaging_StageAndRevert(t *testing.T) {
	s := NewStaging()

	// Price 10 -> 15, then back to 10: no staged changes remain.
	s.Stage(1, "price", 10.0, 15.0)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.FieldCount(1))

	s.Stage(1, "price", 15.0, 10.0)
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.HasChanges())
}

func TestStaging_NoOpNeverStages(t *testing.T) {
	s := NewStaging()
	s.Stage(1, "listed", true, true)
	assert.False(t, s.HasChanges())
}

func TestStaging_KeepsFirstOriginal(t *testing.T) {
	s := NewStaging()
	s.Stage(3, "price", 10.0, 12.0)
	s.Stage(3, "price", 12.0, 14.0)

	changes := s.Changes(3)
	require.Len(t, changes, 1)
	assert.Equal(t, 10.0, changes["price"].Original)
	assert.Equal(t, 14.0, changes["price"].New)
}

func TestStaging_RevertOneFieldKeepsOthers(t *testing.T) {
	s := NewStaging()
	s.Stage(2, "price", 10.0, 12.0)
	s.Stage(2, "listed", false, true)
	assert.Equal(t, 2, s.FieldCount(2))

	s.Stage(2, "price", 10.0, 10.0)
	assert.Equal(t, 1, s.FieldCount(2))
	assert.Equal(t, 1, s.Len())
}

func TestStaging_Discard(t *testing.T) {
	s := NewStaging()
	s.Stage(1, "price", 10.0, 12.0)
	s.Stage(2, "price", 8.0, 9.0)

	s.Discard(1)

	assert.Equal(t, 1, s.Len())
	assert.Nil(t, s.Changes(1))
}

func TestStaging_Snapshot(t *testing.T) {
	s := NewStaging()
	s.Stage(9, "price", 1.0, 2.0)
	s.Stage(4, "listed", false, true)
	s.Stage(4, "category", "misc", "tools")

	updates := s.Snapshot()
	require.Len(t, updates, 2)

	// Ordered by entity ID.
	assert.EqualValues(t, 4, updates[0].ID)
	assert.EqualValues(t, 9, updates[1].ID)
	assert.Equal(t, map[string]any{"listed": true, "category": "tools"}, updates[0].Changes)
	assert.Equal(t, map[string]any{"price": 2.0}, updates[1].Changes)
}
