package models

import "time"

// Account mirrors a bank account at the aggregator. The remote account
// identifier is reused as the local primary key; the remote feed is the
// source of truth and each account sync overwrites the row wholesale.
// Accounts the remote stops returning are kept as-is rather than deleted.
type Account struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	BankID    string    `gorm:"index;not null" json:"bank_id"`
	Type      string    `gorm:"not null" json:"type"`
	Name      string    `gorm:"not null" json:"name"`
	Subtype   string    `json:"subtype"`
	Currency  string    `gorm:"not null" json:"currency"`
	LastFour  string    `json:"last_four"`
	Status    string    `gorm:"not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}
