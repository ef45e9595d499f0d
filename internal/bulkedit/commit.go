package bulkedit

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Policy selects the failure semantics of a commit. Both the batch and the
// single-item update paths go through the same two-phase shape (stage, apply,
// report); only the policy differs, and it is explicit per call.
type Policy int

const (
	// PolicyBestEffort dispatches every update concurrently, keeps the ones
	// that succeed and reports per-item errors for the rest.
	PolicyBestEffort Policy = iota
	// PolicyAtomic applies updates sequentially and stops at the first
	// failure so the caller can roll the whole batch back.
	PolicyAtomic
)

// Applier persists a single update.
type Applier func(ctx context.Context, u Update) error

// Result reports the outcome of a commit. Errors name the failing entities;
// Applied lists the entity IDs whose updates were persisted.
type Result struct {
	Success bool     `json:"success"`
	Applied []int64  `json:"applied"`
	Errors  []string `json:"errors,omitempty"`
}

// Commit applies the updates under the given policy.
func Commit(ctx context.Context, updates []Update, policy Policy, apply Applier) Result {
	if policy == PolicyAtomic {
		return commitAtomic(ctx, updates, apply)
	}
	return commitBestEffort(ctx, updates, apply)
}

func commitBestEffort(ctx context.Context, updates []Update, apply Applier) Result {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		applied []int64
		errs    []string
	)

	for _, u := range updates {
		wg.Add(1)
		go func(u Update) {
			defer wg.Done()
			if err := apply(ctx, u); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Sprintf("item %d: %v", u.ID, err))
				mu.Unlock()
				return
			}
			mu.Lock()
			applied = append(applied, u.ID)
			mu.Unlock()
		}(u)
	}
	wg.Wait()

	sort.Slice(applied, func(i, j int) bool { return applied[i] < applied[j] })
	sort.Strings(errs)

	return Result{Success: len(errs) == 0, Applied: applied, Errors: errs}
}

func commitAtomic(ctx context.Context, updates []Update, apply Applier) Result {
	for _, u := range updates {
		if err := apply(ctx, u); err != nil {
			return Result{
				Success: false,
				Errors:  []string{fmt.Sprintf("item %d: %v", u.ID, err)},
			}
		}
	}
	applied := make([]int64, 0, len(updates))
	for _, u := range updates {
		applied = append(applied, u.ID)
	}
	return Result{Success: true, Applied: applied}
}
