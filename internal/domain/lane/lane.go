// Package lane implements the ordering rules for board lanes: a lane's
// tasks always carry a dense 0..n-1 order, and every reindex resolves
// ties with the same deterministic chain.
package lane

import (
	"sort"

	"github.com/google/uuid"
	"github.com/taskwell/taskwell-api/internal/domain"
)

// Sort orders lane members in place by the canonical tie-break chain:
// lane order ascending, then most recently updated first, then ID
// ascending. Every dense reindex starts from this order so repeated
// repairs are stable.
func Sort(members []*domain.Task) {
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.LaneOrder != b.LaneOrder {
			return a.LaneOrder < b.LaneOrder
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

// Reindex sorts the lane members and assigns dense 0..n-1 orders,
// returning only the members whose order actually changed. The input
// slice is reordered in place.
func Reindex(members []*domain.Task) []*domain.Task {
	Sort(members)

	var changed []*domain.Task
	for i, m := range members {
		if m.LaneOrder != i {
			m.LaneOrder = i
			changed = append(changed, m)
		}
	}
	return changed
}

// Dedupe removes repeated IDs from a caller-supplied ordering,
// preserving the first occurrence of each. Duplicates in a drag payload
// are treated as a deliberate de-duplication policy rather than an
// error.
func Dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Sequence builds the full target-lane sequence for a reorder: the
// caller-supplied IDs first, in their given order, followed by every
// remaining lane member in tie-break order. Members must already have
// the target lane's status. IDs not present among members are skipped;
// the caller validates membership before sequencing.
func Sequence(orderedIDs []uuid.UUID, members []*domain.Task) []*domain.Task {
	byID := make(map[uuid.UUID]*domain.Task, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	seq := make([]*domain.Task, 0, len(members))
	placed := make(map[uuid.UUID]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		m, ok := byID[id]
		if !ok {
			continue
		}
		seq = append(seq, m)
		placed[id] = struct{}{}
	}

	rest := make([]*domain.Task, 0, len(members)-len(seq))
	for _, m := range members {
		if _, ok := placed[m.ID]; !ok {
			rest = append(rest, m)
		}
	}
	Sort(rest)

	return append(seq, rest...)
}

// Apply assigns dense 0..n-1 orders across a computed sequence,
// returning the members whose order changed.
func Apply(seq []*domain.Task) []*domain.Task {
	var changed []*domain.Task
	for i, m := range seq {
		if m.LaneOrder != i {
			m.LaneOrder = i
			changed = append(changed, m)
		}
	}
	return changed
}
