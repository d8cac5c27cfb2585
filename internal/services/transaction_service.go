package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "homeledger/internal/errors"
	"homeledger/internal/logger"
	"homeledger/internal/models"
	"homeledger/internal/pagination"
	"homeledger/internal/teller"
)

// transactionDateLayout is the wire format of transaction dates. Dates carry
// no timezone in the feed; they are pinned to UTC so the watermark comparison
// cannot shift across day boundaries.
const transactionDateLayout = "2006-01-02"

// transactionService handles transaction listing and the incremental
// transaction sync engine.
type transactionService struct {
	db             *gorm.DB
	bankService    BankServicer
	accountService AccountServicer
	remote         RemoteBankAPI
	pageSize       int
	backfillLimit  int
}

// NewTransactionService creates a new TransactionServicer. pageSize bounds
// each incremental page fetch; backfillLimit caps the first-time historical
// pull for an account with no local transactions.
func NewTransactionService(db *gorm.DB, bankService BankServicer, accountService AccountServicer, remote RemoteBankAPI, pageSize, backfillLimit int) TransactionServicer {
	return &transactionService{
		db:             db,
		bankService:    bankService,
		accountService: accountService,
		remote:         remote,
		pageSize:       pageSize,
		backfillLimit:  backfillLimit,
	}
}

// GetAccountTransactions retrieves a paginated list of stored transactions
// for an account, newest first.
func (s *transactionService) GetAccountTransactions(userID, accountID string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	// First verify the account belongs to the user
	if _, err := s.accountService.GetAccountByID(userID, accountID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("account_id = ?", accountID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Counterparty").
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// SyncTransactions reconciles the remote transaction feed for an account
// against the local store. With no local transactions it runs a bounded
// backfill; otherwise it pages through the feed, newest first, until it
// reaches a transaction dated strictly before the local watermark. Pages are
// committed one at a time with insert-or-ignore semantics, so re-running a
// sync after a partial failure is safe.
func (s *transactionService) SyncTransactions(ctx context.Context, userID, accountID string) (*SyncResult, error) {
	bank, err := s.bankService.GetBank(userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.accountService.GetAccountByID(userID, accountID); err != nil {
		return nil, err
	}

	watermark, err := s.latestTransactionDate(accountID)
	if err != nil {
		return nil, err
	}

	resolver, err := newCounterpartyResolver(s.db, userID)
	if err != nil {
		return nil, err
	}

	var result *SyncResult
	if watermark == nil {
		result, err = s.backfill(ctx, bank, accountID, resolver)
	} else {
		result, err = s.catchUp(ctx, bank, accountID, resolver, *watermark)
	}
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("transaction sync complete",
		"user_id", userID,
		"account_id", accountID,
		"mode", result.Mode,
		"ingested", result.Ingested,
	)

	return result, nil
}

// latestTransactionDate returns the most recent stored transaction date for
// an account, or nil when none exist. The watermark is always derived from
// the store rather than cached, so a partially-committed previous run cannot
// leave it stale.
func (s *transactionService) latestTransactionDate(accountID string) (*time.Time, error) {
	var txn models.Transaction
	err := s.db.Where("account_id = ?", accountID).Order("date DESC").First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &txn.Date, nil
}

// backfill performs the first-time historical pull: a single bounded page
// with every transaction treated as new.
func (s *transactionService) backfill(ctx context.Context, bank *models.Bank, accountID string, resolver *counterpartyResolver) (*SyncResult, error) {
	remoteTxns, err := s.remote.ListTransactions(ctx, bank.AccessToken, accountID, teller.ListTransactionsOptions{
		Count: s.backfillLimit,
	})
	if err != nil {
		return nil, err
	}

	ingested, err := s.ingestPage(resolver, remoteTxns)
	if err != nil {
		return nil, err
	}

	return &SyncResult{Mode: SyncModeBackfill, Ingested: ingested}, nil
}

// catchUp pages through the remote feed until it reaches a transaction dated
// strictly before the watermark. A transaction dated exactly at the watermark
// is re-submitted and absorbed by the idempotent insert. Each page commits
// independently; a remote failure mid-loop aborts the run but keeps the pages
// already committed.
func (s *transactionService) catchUp(ctx context.Context, bank *models.Bank, accountID string, resolver *counterpartyResolver, watermark time.Time) (*SyncResult, error) {
	opts := teller.ListTransactionsOptions{Count: s.pageSize}
	ingested := 0

	hasMore := true
	for hasMore {
		remoteTxns, err := s.remote.ListTransactions(ctx, bank.AccessToken, accountID, opts)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrSyncIncomplete, err)
		}

		if len(remoteTxns) == 0 {
			break
		}

		newTxns := make([]teller.Transaction, 0, len(remoteTxns))
		for _, rt := range remoteTxns {
			date, err := parseTransactionDate(rt.Date)
			if err != nil {
				return nil, err
			}

			if date.Before(watermark) {
				hasMore = false
				break
			}

			newTxns = append(newTxns, rt)
			opts.FromID = rt.ID
		}

		n, err := s.ingestPage(resolver, newTxns)
		if err != nil {
			return nil, err
		}
		ingested += n
	}

	return &SyncResult{Mode: SyncModeIncremental, Ingested: ingested}, nil
}

// ingestPage maps one page of remote transactions to local rows and commits
// them in a single store transaction: counterparties created during the page
// are flushed first so the rows referencing them satisfy referential
// integrity, then the transactions are inserted with insert-or-ignore on the
// remote ID.
func (s *transactionService) ingestPage(resolver *counterpartyResolver, batch []teller.Transaction) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	rows := make([]models.Transaction, 0, len(batch))
	for _, rt := range batch {
		row, err := s.mapRemoteTransaction(resolver, rt)
		if err != nil {
			return 0, err
		}
		rows = append(rows, *row)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := resolver.Flush(tx); err != nil {
			return err
		}

		// Batched to stay under driver parameter limits on large backfills;
		// still atomic within the surrounding store transaction.
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).CreateInBatches(&rows, 500).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrStoreConflict, err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(rows), nil
}

// mapRemoteTransaction converts a remote transaction to its local shape:
// the amount string becomes a decimal, the date is pinned to UTC, and absent
// counterparty or category details default to the "unknown" sentinel.
func (s *transactionService) mapRemoteTransaction(resolver *counterpartyResolver, rt teller.Transaction) (*models.Transaction, error) {
	amount, err := decimal.NewFromString(rt.Amount)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRemoteValidation, fmt.Errorf("transaction %s has malformed amount %q: %w", rt.ID, rt.Amount, err))
	}

	date, err := parseTransactionDate(rt.Date)
	if err != nil {
		return nil, err
	}

	var name, ctype string
	if cp := rt.Details.Counterparty; cp != nil {
		if cp.Name != nil {
			name = *cp.Name
		}
		if cp.Type != nil {
			ctype = *cp.Type
		}
	}

	category := models.CounterpartyUnknown
	if rt.Details.Category != nil && *rt.Details.Category != "" {
		category = *rt.Details.Category
	}

	return &models.Transaction{
		ID:             rt.ID,
		AccountID:      rt.AccountID,
		CounterpartyID: resolver.Resolve(name, ctype),
		Description:    rt.Description,
		Amount:         amount,
		Date:           date,
		Type:           rt.Type,
		Status:         rt.Status,
		Category:       category,
	}, nil
}

func parseTransactionDate(value string) (time.Time, error) {
	date, err := time.ParseInLocation(transactionDateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, apperrors.Wrap(apperrors.ErrRemoteValidation, fmt.Errorf("malformed transaction date %q: %w", value, err))
	}
	return date, nil
}
