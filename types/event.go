package types

import "time"

// Account lifecycle event types.
const (
	EventAccountCreated = "account.created"
	EventAccountDeleted = "account.deleted"
)

// AccountEvent notifies downstream consumers of an account lifecycle change.
// It carries identifiers only, never credentials.
type AccountEvent struct {
	Type       string    `json:"type"`
	AccountID  string    `json:"account_id"`
	Role       Role      `json:"role,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
