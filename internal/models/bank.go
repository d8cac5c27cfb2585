package models

import "time"

// Bank holds the link between a user and their institution at the aggregator.
// The primary key is the aggregator's enrollment identifier. The access token
// authenticates every remote call for this enrollment and is never exposed in
// API responses. Current design links at most one bank per user.
type Bank struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	AccessToken     string    `gorm:"not null" json:"-"`
	BankUserID      string    `gorm:"not null" json:"bank_user_id"`
	EnrollmentID    string    `gorm:"not null" json:"enrollment_id"`
	InstitutionID   string    `json:"institution_id"`
	InstitutionName string    `gorm:"not null" json:"institution_name"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Accounts []Account `gorm:"foreignKey:BankID" json:"accounts,omitempty"`
}
