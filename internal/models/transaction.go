package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction mirrors a single transaction from the aggregator feed. The
// remote transaction identifier is the primary key; ingestion inserts rows
// with insert-if-absent semantics, so a row is immutable once stored and
// re-ingesting the same page is a no-op. Dates are stored in UTC.
type Transaction struct {
	ID             string          `gorm:"primaryKey" json:"id"`
	AccountID      string          `gorm:"index;not null" json:"account_id"`
	CounterpartyID string          `gorm:"type:uuid;index;not null" json:"counterparty_id"`
	Description    string          `gorm:"not null" json:"description"`
	Amount         decimal.Decimal `gorm:"type:decimal(19,4);not null" json:"amount"`
	Date           time.Time       `gorm:"index;not null" json:"date"`
	Type           string          `gorm:"not null" json:"type"`
	Status         string          `gorm:"not null" json:"status"`
	Category       string          `gorm:"not null;default:'unknown'" json:"category"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Counterparty *Counterparty `gorm:"foreignKey:CounterpartyID" json:"counterparty,omitempty"`
}
