// Package handler implements the budget screens as commands over the
// transaction cache and data sources.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/thestartupdeveloper10/jamiibudget/internal/cache"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
	"github.com/thestartupdeveloper10/jamiibudget/internal/refresh"
)

// ErrNoBlobStorage is returned when a command needs blob storage that is not configured.
var ErrNoBlobStorage = errors.New("blob storage is not configured")

// Dependencies holds the services required by the screens.
type Dependencies struct {
	Expenses TransactionSource
	Income   TransactionSource
	Cache    *cache.Store
	Loader   SnapshotLoader
	Events   EventBus
	Blob     BlobClient

	UserID           string
	SessionID        string
	ReportsContainer string
	UploadsContainer string

	Out  io.Writer
	JSON bool
	Now  func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// source returns the collection for kind.
func (d *Dependencies) source(kind models.Kind) (TransactionSource, error) {
	switch kind {
	case models.KindExpense:
		return d.Expenses, nil
	case models.KindIncome:
		return d.Income, nil
	}
	return nil, fmt.Errorf("%w: %q", models.ErrInvalidKind, kind)
}

// syncEvents drains change events published by other sessions and forces a
// refresh when any concern the current user.
func (d *Dependencies) syncEvents(ctx context.Context) {
	if d.Events == nil {
		return
	}
	events, err := d.Events.Drain(ctx, d.UserID, d.SessionID)
	if err != nil {
		slog.Warn("failed to drain transaction events", "user_id", d.UserID, "error", err)
		return
	}
	if len(events) > 0 {
		slog.Info("transactions changed elsewhere", "user_id", d.UserID, "events_count", len(events))
		d.Cache.SetShouldRefresh(true)
	}
}

// load returns the cached snapshot, refreshing it when stale. A failed
// refresh still yields the previous data when there is any.
func (d *Dependencies) load(ctx context.Context) (cache.Snapshot, error) {
	d.syncEvents(ctx)

	snap, err := d.Loader.Load(ctx, d.UserID)
	if err == nil {
		return snap, nil
	}
	if errors.Is(err, refresh.ErrStale) || snap.LastFetched == nil {
		return snap, err
	}
	slog.Warn("showing cached transactions after failed refresh", "user_id", d.UserID, "last_fetched", *snap.LastFetched, "error", err)
	return snap, nil
}

// changed publishes a change event and marks the local cache stale.
func (d *Dependencies) changed(ctx context.Context, kind models.Kind, action models.Action, id string) {
	d.Cache.SetShouldRefresh(true)
	if d.Events == nil {
		return
	}
	evt := models.TransactionEvent{
		Kind:   kind,
		Action: action,
		ID:     id,
		UserID: d.UserID,
		Origin: d.SessionID,
		At:     d.now().UTC(),
	}
	if err := d.Events.Publish(ctx, evt); err != nil {
		slog.Warn("failed to publish transaction event", "kind", kind, "action", action, "id", id, "error", err)
	}
}

// render writes view as JSON or hands a tab-aligned writer to text.
func (d *Dependencies) render(view any, text func(w io.Writer)) error {
	if d.JSON {
		return WriteJSON(d.Out, view)
	}
	tw := tabwriter.NewWriter(d.Out, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

// WriteJSON writes data as indented JSON.
func WriteJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Error("failed to encode JSON output", "error", err)
		return err
	}
	return nil
}
