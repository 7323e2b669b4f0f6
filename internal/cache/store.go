// Package cache holds the in-memory transaction snapshot shared by every
// screen of a session.
package cache

import (
	"slices"
	"sync"
	"time"

	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

// Snapshot is the current cached view. Slices are shared with the store and
// must be treated as read-only.
type Snapshot struct {
	Expenses           []models.Transaction
	Income             []models.Transaction
	LastFetched        *time.Time
	ShouldForceRefresh bool
}

// Store caches the last fetched expense and income lists. The zero value is
// not usable; create one with New.
type Store struct {
	mu        sync.RWMutex
	snap      Snapshot
	now       func() time.Time
	observers []observer
	nextID    int
}

type observer struct {
	id int
	fn func(Snapshot)
}

// New returns an empty store. A nil clock means time.Now.
func New(clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{now: clock}
}

// Snapshot returns the current snapshot without side effects.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// SetTransactions replaces both lists and stamps LastFetched. The force
// refresh flag is left as it is.
func (s *Store) SetTransactions(expenses, income []models.Transaction) {
	s.update(func(snap *Snapshot) {
		now := s.now()
		snap.Expenses = expenses
		snap.Income = income
		snap.LastFetched = &now
	})
}

// Invalidate clears LastFetched so the next freshness check fails.
func (s *Store) Invalidate() {
	s.update(func(snap *Snapshot) {
		snap.LastFetched = nil
	})
}

// SetShouldRefresh sets the force refresh override.
func (s *Store) SetShouldRefresh(flag bool) {
	s.update(func(snap *Snapshot) {
		snap.ShouldForceRefresh = flag
	})
}

// Subscribe registers fn to be called synchronously after every mutation,
// after the observers subscribed before it. The returned func removes the
// subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, observer{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.observers = slices.DeleteFunc(s.observers, func(o observer) bool { return o.id == id })
		s.mu.Unlock()
	}
}

func (s *Store) update(mutate func(*Snapshot)) {
	s.mu.Lock()
	mutate(&s.snap)
	snap := s.snap
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	// Observers run outside the lock so they may read the store again.
	for _, o := range observers {
		o.fn(snap)
	}
}
