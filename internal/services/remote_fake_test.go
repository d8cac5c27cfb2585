package services

import (
	"context"
	"errors"
	"fmt"

	apperrors "homeledger/internal/errors"
	"homeledger/internal/teller"
)

// fakeRemote simulates the aggregator API for sync tests. The transaction
// feed is held newest-first, exactly as the real API serves it, and
// ListTransactions pages through it honoring the count and from_id cursor
// parameters.
type fakeRemote struct {
	accounts        []teller.Account
	feed            []teller.Transaction
	listAccountsErr error

	// failOnCall makes the nth ListTransactions call (1-based) fail with a
	// transport error. Zero disables failures.
	failOnCall int

	transactionCalls int
}

func (f *fakeRemote) ListAccounts(ctx context.Context, accessToken string) ([]teller.Account, error) {
	if f.listAccountsErr != nil {
		return nil, f.listAccountsErr
	}
	return append([]teller.Account{}, f.accounts...), nil
}

func (f *fakeRemote) ListTransactions(ctx context.Context, accessToken, accountID string, opts teller.ListTransactionsOptions) ([]teller.Transaction, error) {
	f.transactionCalls++
	if f.failOnCall != 0 && f.transactionCalls >= f.failOnCall {
		return nil, apperrors.Wrap(apperrors.ErrRemoteTransport, errors.New("connection reset"))
	}

	start := 0
	if opts.FromID != "" {
		start = len(f.feed)
		for i := range f.feed {
			if f.feed[i].ID == opts.FromID {
				start = i + 1
				break
			}
		}
	}

	end := len(f.feed)
	if opts.Count > 0 && start+opts.Count < end {
		end = start + opts.Count
	}
	if start >= len(f.feed) {
		return []teller.Transaction{}, nil
	}

	return append([]teller.Transaction{}, f.feed[start:end]...), nil
}

// remoteTxn builds a feed transaction with a counterparty name.
func remoteTxn(id, accountID, date, amount, counterparty string) teller.Transaction {
	txn := teller.Transaction{
		ID:          id,
		AccountID:   accountID,
		Amount:      amount,
		Date:        date,
		Description: fmt.Sprintf("purchase %s", id),
		Details: teller.TransactionDetails{
			ProcessingStatus: "complete",
		},
		Status: "posted",
		Type:   "card_payment",
	}
	if counterparty != "" {
		ctype := "organization"
		txn.Details.Counterparty = &teller.Counterparty{Name: &counterparty, Type: &ctype}
	}
	return txn
}

// remoteAccount builds a remote account for account sync tests.
func remoteAccount(id, enrollmentID, name string) teller.Account {
	return teller.Account{
		ID:           id,
		EnrollmentID: enrollmentID,
		Links: teller.AccountLinks{
			Balances:     "https://api.example.com/accounts/" + id + "/balances",
			Self:         "https://api.example.com/accounts/" + id,
			Transactions: "https://api.example.com/accounts/" + id + "/transactions",
		},
		Institution: teller.Institution{ID: "test_bank", Name: "Test Bank"},
		Type:        "depository",
		Name:        name,
		Subtype:     "checking",
		Currency:    "USD",
		LastFour:    "1234",
		Status:      "open",
	}
}
