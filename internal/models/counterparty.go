package models

// CounterpartyUnknown is the sentinel used for both name and type when the
// remote feed omits counterparty details. All such transactions for a user
// resolve to a single shared row.
const CounterpartyUnknown = "unknown"

// Counterparty is the other party of a transaction (merchant or payee),
// deduplicated per user by name: at most one row per distinct name per user.
type Counterparty struct {
	Base
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_counterparty_user_name" json:"user_id"`
	Name   string `gorm:"not null;uniqueIndex:idx_counterparty_user_name" json:"name"`
	Type   string `gorm:"not null" json:"type"`
}
