package cache

import "time"

// DefaultDuration is how long a fetched snapshot counts as fresh.
const DefaultDuration = 5 * time.Minute

// IsFresh applies the freshness policy to a snapshot. The store never
// evaluates this itself; each caller decides when to refetch.
func IsFresh(snap Snapshot, now time.Time, maxAge time.Duration) bool {
	if snap.ShouldForceRefresh || snap.LastFetched == nil {
		return false
	}
	if now.Sub(*snap.LastFetched) >= maxAge {
		return false
	}
	return len(snap.Expenses) > 0 || len(snap.Income) > 0
}
