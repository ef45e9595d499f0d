package bulkedit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeUpdates() []Update {
	return []Update{
		{ID: 1, Changes: map[string]any{"price": 5.0}},
		{ID: 2, Changes: map[string]any{"price": 6.0}},
		{ID: 3, Changes: map[string]any{"price": 7.0}},
	}
}

func TestCommit_BestEffortPartialFailure(t *testing.T) {
	var mu sync.Mutex
	persisted := map[int64]bool{}

	apply := func(ctx context.Context, u Update) error {
		if u.ID == 2 {
			return errors.New("write failed")
		}
		mu.Lock()
		persisted[u.ID] = true
		mu.Unlock()
		return nil
	}

	res := Commit(context.Background(), threeUpdates(), PolicyBestEffort, apply)

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.Contains(res.Errors[0], "item 2"), "error should name item 2: %s", res.Errors[0])

	// Items 1 and 3 stay applied; no cross-item rollback.
	assert.Equal(t, []int64{1, 3}, res.Applied)
	assert.True(t, persisted[1])
	assert.True(t, persisted[3])
	assert.False(t, persisted[2])
}

func TestCommit_BestEffortAllSucceed(t *testing.T) {
	apply := func(ctx context.Context, u Update) error { return nil }

	res := Commit(context.Background(), threeUpdates(), PolicyBestEffort, apply)

	assert.True(t, res.Success)
	assert.Empty(t, res.Errors)
	assert.Equal(t, []int64{1, 2, 3}, res.Applied)
}

func TestCommit_AtomicStopsAtFirstFailure(t *testing.T) {
	var attempted []int64
	apply := func(ctx context.Context, u Update) error {
		attempted = append(attempted, u.ID)
		if u.ID == 2 {
			return errors.New("write failed")
		}
		return nil
	}

	res := Commit(context.Background(), threeUpdates(), PolicyAtomic, apply)

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "item 2")
	assert.Empty(t, res.Applied)
	// Item 3 is never attempted; the caller rolls back 1 and 2.
	assert.Equal(t, []int64{1, 2}, attempted)
}

func TestCommit_AtomicAllSucceed(t *testing.T) {
	apply := func(ctx context.Context, u Update) error { return nil }

	res := Commit(context.Background(), threeUpdates(), PolicyAtomic, apply)

	assert.True(t, res.Success)
	assert.Equal(t, []int64{1, 2, 3}, res.Applied)
}

func TestCommit_Empty(t *testing.T) {
	apply := func(ctx context.Context, u Update) error { return errors.New("never called") }

	res := Commit(context.Background(), nil, PolicyBestEffort, apply)
	assert.True(t, res.Success)
	assert.Empty(t, res.Applied)
}
