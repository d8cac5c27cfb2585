package services

import (
	"context"

	"homeledger/internal/models"
	"homeledger/internal/pagination"
	"homeledger/internal/teller"
)

// RemoteBankAPI is the contract the sync services consume from the aggregator
// client. Satisfied by *teller.Client; tests substitute a fake.
type RemoteBankAPI interface {
	ListAccounts(ctx context.Context, accessToken string) ([]teller.Account, error)
	ListTransactions(ctx context.Context, accessToken, accountID string, opts teller.ListTransactionsOptions) ([]teller.Transaction, error)
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID string, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// BankLink holds the enrollment data produced by the aggregator's connect
// flow, submitted by the client when linking a bank.
type BankLink struct {
	AccessToken     string
	EnrollmentID    string
	BankUserID      string
	InstitutionID   string
	InstitutionName string
}

// BankServicer defines the contract for bank enrollment business logic.
type BankServicer interface {
	LinkBank(userID string, link BankLink) (*models.Bank, error)
	GetBank(userID string) (*models.Bank, error)
	ListBanks() ([]models.Bank, error)
}

// AccountServicer defines the contract for account listing and account sync.
type AccountServicer interface {
	GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	SyncAccounts(ctx context.Context, userID string) ([]models.Account, error)
}

// SyncMode identifies which ingestion strategy a transaction sync ran.
type SyncMode string

const (
	// SyncModeBackfill is the first-time bounded historical pull, used when
	// no local transactions exist for the account yet.
	SyncModeBackfill SyncMode = "backfill"
	// SyncModeIncremental pages through the remote feed until it reaches a
	// transaction dated strictly before the local watermark.
	SyncModeIncremental SyncMode = "incremental"
)

// SyncResult summarizes a completed transaction sync.
type SyncResult struct {
	Mode     SyncMode `json:"mode"`
	Ingested int      `json:"ingested"`
}

// TransactionServicer defines the contract for transaction listing and the
// incremental transaction sync engine.
type TransactionServicer interface {
	GetAccountTransactions(userID, accountID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	SyncTransactions(ctx context.Context, userID, accountID string) (*SyncResult, error)
}

// CounterpartyServicer defines the contract for counterparty listing.
type CounterpartyServicer interface {
	GetUserCounterparties(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Counterparty], error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
