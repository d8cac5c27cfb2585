package testutil_test

import (
	"testing"
	"time"

	"homeledger/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "banks", "accounts", "counterparties", "transactions", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have a non-empty ID")
	}

	bank := testutil.CreateTestBank(t, db, user.ID)
	if bank.UserID != user.ID {
		t.Errorf("expected bank user %s, got %s", user.ID, bank.UserID)
	}

	account := testutil.CreateTestAccount(t, db, bank.ID)
	if account.BankID != bank.ID {
		t.Errorf("expected account bank %s, got %s", bank.ID, account.BankID)
	}

	cp := testutil.CreateTestCounterparty(t, db, user.ID, "Acme Corp")
	if cp.ID == "" {
		t.Fatal("counterparty should have a generated ID")
	}

	txn := testutil.CreateTestTransaction(t, db, account.ID, cp.ID, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if txn.CounterpartyID != cp.ID {
		t.Errorf("expected transaction counterparty %s, got %s", cp.ID, txn.CounterpartyID)
	}
}
