// Package refresh decides when the transaction cache needs refetching and
// performs the fetch.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/thestartupdeveloper10/jamiibudget/internal/cache"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
	"golang.org/x/sync/errgroup"
)

// ErrStale is returned when a fetch completed after its requester detached.
// The response is dropped and the cache left unchanged.
var ErrStale = errors.New("stale fetch response discarded")

// Lister is the read side of a transaction data source.
type Lister interface {
	ListByUser(ctx context.Context, userID string) ([]models.Transaction, error)
}

// Loader applies the freshness policy for one consumer and refreshes the
// shared cache when needed.
type Loader struct {
	store    *cache.Store
	expenses Lister
	income   Lister
	maxAge   time.Duration
	now      func() time.Time

	generation atomic.Uint64
}

// NewLoader creates a Loader. A non-positive maxAge means cache.DefaultDuration.
func NewLoader(store *cache.Store, expenses, income Lister, maxAge time.Duration) *Loader {
	if maxAge <= 0 {
		maxAge = cache.DefaultDuration
	}
	return &Loader{
		store:    store,
		expenses: expenses,
		income:   income,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Load returns the cached snapshot when fresh and refreshes it otherwise.
func (l *Loader) Load(ctx context.Context, userID string) (cache.Snapshot, error) {
	snap := l.store.Snapshot()
	if cache.IsFresh(snap, l.now(), l.maxAge) {
		slog.Debug("using cached transactions", "user_id", userID, "last_fetched", *snap.LastFetched)
		return snap, nil
	}
	return l.Refresh(ctx, userID)
}

// Refresh fetches both collections and replaces the cached snapshot. On
// failure the previous snapshot is returned together with the error. The
// force refresh flag is cleared either way.
func (l *Loader) Refresh(ctx context.Context, userID string) (cache.Snapshot, error) {
	gen := l.generation.Load()

	var expenses, income []models.Transaction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = l.expenses.ListByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		income, err = l.income.ListByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list income: %w", err)
		}
		return nil
	})

	err := g.Wait()
	l.store.SetShouldRefresh(false)

	if l.generation.Load() != gen || ctx.Err() != nil {
		slog.Warn("discarding stale transaction fetch", "user_id", userID, "generation", gen)
		return l.store.Snapshot(), ErrStale
	}
	if err != nil {
		slog.Error("failed to refresh transactions", "user_id", userID, "error", err)
		return l.store.Snapshot(), err
	}

	l.store.SetTransactions(expenses, income)
	slog.Info("refreshed transactions", "user_id", userID, "expenses_count", len(expenses), "income_count", len(income))
	return l.store.Snapshot(), nil
}

// Detach marks every in-flight fetch started by this loader as stale.
func (l *Loader) Detach() {
	l.generation.Add(1)
}
