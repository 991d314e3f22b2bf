package booking

import (
	"fmt"
	"sort"
	"time"
)

// Entry is the projection of a persisted reservation the conflict auditor
// operates on.
type Entry struct {
	ID        string
	AreaID    string
	Category  Category
	Date      string
	Window    Interval
	FullDay   bool
	CreatorID string
	CreatedAt time.Time
}

// ConflictKind labels why a reservation was scheduled for removal.
type ConflictKind string

const (
	// ConflictDuplicate marks an exact duplicate of an older reservation.
	ConflictDuplicate ConflictKind = "duplicate"
	// ConflictOverlap marks a time overlap with an older reservation in an
	// exclusive-interval area.
	ConflictOverlap ConflictKind = "overlap"
)

// Removal is one planned resolution: remove ID, because it conflicts with the
// retained (older) reservation.
type Removal struct {
	ID         string
	RetainedID string
	Kind       ConflictKind
}

// PlanResolutions finds reservations that should never have been allowed to
// coexist and plans their deterministic resolution: within each conflicting
// set the earliest-created member is retained and the rest are removed.
// Running the plan against the surviving entries again yields no removals.
//
// Two passes per (area, date) group, in creation order (ties broken by ID so
// repeated runs agree):
//
//  1. Exact duplicates. Exclusive-interval areas bucket by time window alone;
//     shared-pool areas additionally key on the creator, because distinct
//     users legitimately share the same window there and only retried writes
//     of the same request are duplicates.
//  2. Overlaps, exclusive-interval areas only, using the same half-open test
//     the availability checker applies.
func PlanResolutions(entries []Entry) []Removal {
	groups := groupEntries(entries)

	var removals []Removal
	for _, key := range sortedGroupKeys(groups) {
		group := groups[key]
		sortByAge(group)

		removed := make(map[string]bool, len(group))

		// Duplicate pass.
		oldest := make(map[string]string, len(group))
		for _, entry := range group {
			k := duplicateKey(entry)
			if retained, ok := oldest[k]; ok {
				removals = append(removals, Removal{ID: entry.ID, RetainedID: retained, Kind: ConflictDuplicate})
				removed[entry.ID] = true
				continue
			}
			oldest[k] = entry.ID
		}

		// Overlap pass.
		var kept []Entry
		for _, entry := range group {
			if removed[entry.ID] || entry.Category != CategoryMeetingRoom {
				continue
			}
			conflicted := false
			for _, survivor := range kept {
				if entry.Window.Overlaps(survivor.Window) {
					removals = append(removals, Removal{ID: entry.ID, RetainedID: survivor.ID, Kind: ConflictOverlap})
					conflicted = true
					break
				}
			}
			if !conflicted {
				kept = append(kept, entry)
			}
		}
	}

	return removals
}

// RemainingConflicts re-runs detection and returns the conflicting ID pairs
// still present. After applying a resolution plan it must be empty; a
// non-empty result is the postcondition failure the audit surfaces as its own
// error.
func RemainingConflicts(entries []Entry) [][2]string {
	var pairs [][2]string
	for _, removal := range PlanResolutions(entries) {
		pairs = append(pairs, [2]string{removal.RetainedID, removal.ID})
	}
	return pairs
}

func duplicateKey(entry Entry) string {
	window := fmt.Sprintf("%d-%d", entry.Window.StartMin, entry.Window.EndMin)
	if entry.FullDay {
		window = "full-day"
	}
	if entry.Category == CategoryMeetingRoom {
		return window
	}
	return entry.CreatorID + "|" + window
}

func groupEntries(entries []Entry) map[string][]Entry {
	groups := make(map[string][]Entry)
	for _, entry := range entries {
		key := entry.AreaID + "|" + entry.Date
		groups[key] = append(groups[key], entry)
	}
	return groups
}

func sortedGroupKeys(groups map[string][]Entry) []string {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortByAge(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}
