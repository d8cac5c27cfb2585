package teller

// Wire types for the aggregator REST API. Payloads are validated strictly:
// a response that does not match this schema fails the call instead of
// passing through to the sync engine.

// Institution identifies the bank behind an enrollment.
type Institution struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// AccountLinks carries the hypermedia links returned with each account.
type AccountLinks struct {
	Balances     string `json:"balances" validate:"required"`
	Self         string `json:"self" validate:"required"`
	Transactions string `json:"transactions" validate:"required"`
}

// Account is a bank account as returned by GET /accounts.
type Account struct {
	ID           string       `json:"id" validate:"required"`
	EnrollmentID string       `json:"enrollment_id" validate:"required"`
	Links        AccountLinks `json:"links"`
	Institution  Institution  `json:"institution"`
	Type         string       `json:"type" validate:"required"`
	Name         string       `json:"name" validate:"required"`
	Subtype      string       `json:"subtype" validate:"required"`
	Currency     string       `json:"currency" validate:"required,iso4217"`
	LastFour     string       `json:"last_four" validate:"required"`
	Status       string       `json:"status" validate:"required,account_status"`
}

// Counterparty is the optional other party of a transaction. Both fields are
// nullable in the feed.
type Counterparty struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
}

// TransactionDetails carries enrichment data attached to a transaction.
type TransactionDetails struct {
	ProcessingStatus string        `json:"processing_status" validate:"required"`
	Category         *string       `json:"category"`
	Counterparty     *Counterparty `json:"counterparty"`
}

// TransactionLinks carries the hypermedia links returned with each transaction.
type TransactionLinks struct {
	Self    string `json:"self" validate:"required"`
	Account string `json:"account" validate:"required"`
}

// Transaction is a single transaction as returned by
// GET /accounts/{id}/transactions, newest first.
type Transaction struct {
	ID             string             `json:"id" validate:"required"`
	AccountID      string             `json:"account_id" validate:"required"`
	Amount         string             `json:"amount" validate:"required"`
	Date           string             `json:"date" validate:"required,datetime=2006-01-02"`
	Description    string             `json:"description" validate:"required"`
	Details        TransactionDetails `json:"details"`
	Status         string             `json:"status" validate:"required,transaction_status"`
	Links          TransactionLinks   `json:"links"`
	RunningBalance *string            `json:"running_balance"`
	Type           string             `json:"type" validate:"required"`
}
