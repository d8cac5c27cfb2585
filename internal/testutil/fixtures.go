package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"homeledger/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestBank links a bank to the given user.
func CreateTestBank(t *testing.T, db *gorm.DB, userID string) *models.Bank {
	t.Helper()

	n := nextID()
	bank := &models.Bank{
		ID:              fmt.Sprintf("enr_test_%d", n),
		UserID:          userID,
		AccessToken:     fmt.Sprintf("token_test_%d", n),
		BankUserID:      fmt.Sprintf("usr_test_%d", n),
		EnrollmentID:    fmt.Sprintf("enr_test_%d", n),
		InstitutionID:   "test_bank",
		InstitutionName: "Test Bank",
	}
	if err := db.Create(bank).Error; err != nil {
		t.Fatalf("failed to create test bank: %v", err)
	}
	return bank
}

// CreateTestAccount creates a synced account under the given bank.
func CreateTestAccount(t *testing.T, db *gorm.DB, bankID string) *models.Account {
	t.Helper()

	n := nextID()
	account := &models.Account{
		ID:       fmt.Sprintf("acc_test_%d", n),
		BankID:   bankID,
		Type:     "depository",
		Name:     fmt.Sprintf("Test Checking %d", n),
		Subtype:  "checking",
		Currency: "USD",
		LastFour: "1234",
		Status:   "open",
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCounterparty creates a counterparty for the given user.
func CreateTestCounterparty(t *testing.T, db *gorm.DB, userID, name string) *models.Counterparty {
	t.Helper()

	cp := &models.Counterparty{
		UserID: userID,
		Name:   name,
		Type:   "organization",
	}
	if err := db.Create(cp).Error; err != nil {
		t.Fatalf("failed to create test counterparty: %v", err)
	}
	return cp
}

// CreateTestTransaction creates a stored transaction on the given account,
// dated the given day, referencing the given counterparty.
func CreateTestTransaction(t *testing.T, db *gorm.DB, accountID, counterpartyID string, date time.Time) *models.Transaction {
	t.Helper()

	n := nextID()
	txn := &models.Transaction{
		ID:             fmt.Sprintf("txn_test_%d", n),
		AccountID:      accountID,
		CounterpartyID: counterpartyID,
		Description:    fmt.Sprintf("Test transaction %d", n),
		Amount:         decimal.NewFromFloat(-12.50),
		Date:           date,
		Type:           "card_payment",
		Status:         "posted",
		Category:       "general",
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}
