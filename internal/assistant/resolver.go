package assistant

import (
	"strings"

	"viaggio/internal/core"
)

// ResolveTrip decides which trip an utterance refers to. Resolution order,
// first match wins:
//
//  1. explicitID, the caller's current UI context, never second-guessed.
//  2. Fuzzy hint match against trip name or destination, in list order.
//  3. The first trip in the list (callers pass trips newest-first), taken
//     only when fallbackToLatest is set. Mutations want this; queries may
//     legitimately stay unscoped and run across all trips.
//
// Returns false when nothing resolves, including the no-trips-at-all case.
func ResolveTrip(explicitID int64, hint string, trips []core.Trip, fallbackToLatest bool) (int64, bool) {
	if explicitID != 0 {
		return explicitID, true
	}

	if hint != "" {
		for _, t := range trips {
			if MatchesHint(hint, t.Name) || MatchesHint(hint, t.Destination) {
				return t.ID, true
			}
		}
	}

	if fallbackToLatest && len(trips) > 0 {
		return trips[0].ID, true
	}

	return 0, false
}

// MatchesHint reports whether a free-text hint refers to the candidate:
// case-insensitive substring containment. Deliberately a pure two-string
// function so a stronger matcher can replace it without touching resolution.
func MatchesHint(hint, candidate string) bool {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" || candidate == "" {
		return false
	}
	return strings.Contains(strings.ToLower(candidate), hint)
}

// tripName returns the display name for a trip ID, with a neutral fallback
// for stale IDs.
func tripName(trips []core.Trip, id int64) string {
	for _, t := range trips {
		if t.ID == id {
			return t.Name
		}
	}
	return "your trip"
}
