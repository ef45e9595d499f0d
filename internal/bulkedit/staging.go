// Package bulkedit holds pending field-level edits for a set of entities and
// commits them as a batch under an explicit policy.
package bulkedit

import (
	"reflect"
	"sort"
)

// Change records a pending edit to one field. Original is the persisted value
// at the time the field was first staged.
type Change struct {
	Original any `json:"original"`
	New      any `json:"new"`
}

// Update is one entity's staged changes flattened for commit.
type Update struct {
	ID      int64          `json:"id"`
	Changes map[string]any `json:"changes"`
}

// Staging maps entity IDs to their staged field changes. Staging a field back
// to its original value removes the entry, so a no-op edit leaves no residue.
type Staging struct {
	entries map[int64]map[string]Change
}

// NewStaging returns an empty staging area.
func NewStaging() *Staging {
	return &Staging{entries: make(map[int64]map[string]Change)}
}

// Stage records that field on entity id should change from original to next.
// If the field is already staged, the first original is kept so that staging
// back to it removes the entry entirely.
func (s *Staging) Stage(id int64, field string, original, next any) {
	fields := s.entries[id]

	orig := original
	if existing, ok := fields[field]; ok {
		orig = existing.Original
	}

	if reflect.DeepEqual(orig, next) {
		if fields == nil {
			return
		}
		delete(fields, field)
		if len(fields) == 0 {
			delete(s.entries, id)
		}
		return
	}

	if fields == nil {
		fields = make(map[string]Change)
		s.entries[id] = fields
	}
	fields[field] = Change{Original: orig, New: next}
}

// Discard drops all staged changes for an entity, as when it is deselected.
func (s *Staging) Discard(id int64) {
	delete(s.entries, id)
}

// Changes returns a copy of the staged changes for an entity.
func (s *Staging) Changes(id int64) map[string]Change {
	fields, ok := s.entries[id]
	if !ok {
		return nil
	}
	out := make(map[string]Change, len(fields))
	for f, c := range fields {
		out[f] = c
	}
	return out
}

// Len is the number of entities with at least one staged change.
func (s *Staging) Len() int {
	return len(s.entries)
}

// FieldCount is the number of staged fields for an entity.
func (s *Staging) FieldCount(id int64) int {
	return len(s.entries[id])
}

// HasChanges reports whether anything is staged.
func (s *Staging) HasChanges() bool {
	return len(s.entries) > 0
}

// Snapshot flattens the staged changes into update requests, ordered by
// entity ID for deterministic dispatch.
func (s *Staging) Snapshot() []Update {
	updates := make([]Update, 0, len(s.entries))
	for id, fields := range s.entries {
		changes := make(map[string]any, len(fields))
		for f, c := range fields {
			changes[f] = c.New
		}
		updates = append(updates, Update{ID: id, Changes: changes})
	}
	sort.Slice(updates, func(i, j int) bool { return updates[i].ID < updates[j].ID })
	return updates
}
