package services

import (
	"context"
	"errors"
	"testing"

	apperrors "homeledger/internal/errors"
	"homeledger/internal/models"
	"homeledger/internal/pagination"
	"homeledger/internal/teller"
	"homeledger/internal/testutil"
)

func TestSyncAccounts(t *testing.T) {
	t.Run("creates_accounts_from_the_remote_list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		bank := testutil.CreateTestBank(t, db, user.ID)

		remote := &fakeRemote{accounts: []teller.Account{
			remoteAccount("acc_1", bank.ID, "Everyday Checking"),
			remoteAccount("acc_2", bank.ID, "Rainy Day Savings"),
		}}
		bankSvc := NewBankService(db)
		svc := NewAccountService(db, bankSvc, remote)

		accounts, err := svc.SyncAccounts(context.Background(), user.ID)
		testutil.AssertNoError(t, err)

		if len(accounts) != 2 {
			t.Fatalf("expected 2 accounts, got %d", len(accounts))
		}
		var stored models.Account
		testutil.AssertNoError(t, db.Where("id = ?", "acc_1").First(&stored).Error)
		if stored.BankID != bank.ID || stored.Name != "Everyday Checking" {
			t.Errorf("unexpected stored account: %+v", stored)
		}
	})

	t.Run("overwrites_existing_rows_with_remote_state", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		bank := testutil.CreateTestBank(t, db, user.ID)
		account := testutil.CreateTestAccount(t, db, bank.ID)

		renamed := remoteAccount(account.ID, bank.ID, "Renamed Checking")
		renamed.Status = "closed"
		remote := &fakeRemote{accounts: []teller.Account{renamed}}
		bankSvc := NewBankService(db)
		svc := NewAccountService(db, bankSvc, remote)

		_, err := svc.SyncAccounts(context.Background(), user.ID)
		testutil.AssertNoError(t, err)

		var stored models.Account
		testutil.AssertNoError(t, db.Where("id = ?", account.ID).First(&stored).Error)
		if stored.Name != "Renamed Checking" || stored.Status != "closed" {
			t.Errorf("expected remote state to win, got %+v", stored)
		}
	})

	t.Run("keeps_accounts_the_remote_stopped_returning", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		bank := testutil.CreateTestBank(t, db, user.ID)
		stale := testutil.CreateTestAccount(t, db, bank.ID)

		remote := &fakeRemote{accounts: []teller.Account{
			remoteAccount("acc_fresh", bank.ID, "Fresh Account"),
		}}
		bankSvc := NewBankService(db)
		svc := NewAccountService(db, bankSvc, remote)

		_, err := svc.SyncAccounts(context.Background(), user.ID)
		testutil.AssertNoError(t, err)

		var count int64
		testutil.AssertNoError(t, db.Model(&models.Account{}).Where("bank_id = ?", bank.ID).Count(&count).Error)
		if count != 2 {
			t.Errorf("expected the stale account to survive, got %d rows", count)
		}
		var still models.Account
		testutil.AssertNoError(t, db.Where("id = ?", stale.ID).First(&still).Error)
	})

	t.Run("empty_remote_list_is_a_no_op", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestBank(t, db, user.ID)

		bankSvc := NewBankService(db)
		svc := NewAccountService(db, bankSvc, &fakeRemote{})

		accounts, err := svc.SyncAccounts(context.Background(), user.ID)
		testutil.AssertNoError(t, err)
		if len(accounts) != 0 {
			t.Errorf("expected no accounts, got %d", len(accounts))
		}
	})

	t.Run("bank_not_linked", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)

		bankSvc := NewBankService(db)
		svc := NewAccountService(db, bankSvc, &fakeRemote{})

		_, err := svc.SyncAccounts(context.Background(), user.ID)
		testutil.AssertAppError(t, err, "BANK_NOT_LINKED")
	})

	t.Run("remote_failure_propagates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestBank(t, db, user.ID)

		remote := &fakeRemote{listAccountsErr: apperrors.Wrap(apperrors.ErrRemoteTransport, errors.New("tls handshake failed"))}
		bankSvc := NewBankService(db)
		svc := NewAccountService(db, bankSvc, remote)

		_, err := svc.SyncAccounts(context.Background(), user.ID)
		testutil.AssertAppError(t, err, "REMOTE_TRANSPORT")
	})
}

func TestGetUserAccounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUserWithEmail(t, db, "other@example.com")
	bank := testutil.CreateTestBank(t, db, user.ID)
	otherBank := testutil.CreateTestBank(t, db, other.ID)

	testutil.CreateTestAccount(t, db, bank.ID)
	testutil.CreateTestAccount(t, db, bank.ID)
	testutil.CreateTestAccount(t, db, otherBank.ID)

	bankSvc := NewBankService(db)
	svc := NewAccountService(db, bankSvc, &fakeRemote{})

	page, err := svc.GetUserAccounts(user.ID, pagination.PageRequest{})
	testutil.AssertNoError(t, err)

	if page.TotalItems != 2 {
		t.Errorf("expected 2 accounts for the owner, got %d", page.TotalItems)
	}
}

func TestGetAccountByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUserWithEmail(t, db, "other@example.com")
	bank := testutil.CreateTestBank(t, db, user.ID)
	account := testutil.CreateTestAccount(t, db, bank.ID)

	bankSvc := NewBankService(db)
	svc := NewAccountService(db, bankSvc, &fakeRemote{})

	got, err := svc.GetAccountByID(user.ID, account.ID)
	testutil.AssertNoError(t, err)
	if got.ID != account.ID {
		t.Errorf("expected account %s, got %s", account.ID, got.ID)
	}

	_, err = svc.GetAccountByID(other.ID, account.ID)
	testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")

	_, err = svc.GetAccountByID(user.ID, "acc_missing")
	testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
}
