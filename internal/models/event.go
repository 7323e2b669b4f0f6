package models

import "time"

// Action is the kind of change a TransactionEvent describes.
type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionImported Action = "imported"
)

// TransactionEvent announces that a collection changed so other sessions can
// mark their cached data stale. Origin is the id of the publishing session.
type TransactionEvent struct {
	Kind   Kind      `json:"kind"`
	Action Action    `json:"action"`
	ID     string    `json:"id,omitempty"`
	UserID string    `json:"user_id"`
	Origin string    `json:"origin,omitempty"`
	At     time.Time `json:"at"`
}

// Relevant reports whether a session of userID other than origin should react
// to e.
func (e TransactionEvent) Relevant(userID, origin string) bool {
	return e.UserID == userID && (origin == "" || e.Origin != origin)
}
