package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "homeledger/internal/errors"
	"homeledger/internal/logger"
	"homeledger/internal/models"
	"homeledger/internal/pagination"
)

// accountService handles account listing and account sync.
type accountService struct {
	db          *gorm.DB
	bankService BankServicer
	remote      RemoteBankAPI
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB, bankService BankServicer, remote RemoteBankAPI) AccountServicer {
	return &accountService{db: db, bankService: bankService, remote: remote}
}

// GetUserAccounts retrieves a paginated list of the user's synced accounts.
func (s *accountService) GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	base := s.db.Model(&models.Account{}).
		Joins("JOIN banks ON banks.id = accounts.bank_id").
		Where("banks.user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).
		Order("accounts.name ASC").
		Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an account, verifying it belongs to one of the
// user's linked banks.
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	var account models.Account
	err := s.db.
		Joins("JOIN banks ON banks.id = accounts.bank_id").
		Where("banks.user_id = ? AND accounts.id = ?", userID, accountID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// SyncAccounts fetches the account list for the user's linked bank and
// upserts it wholesale: existing rows are overwritten with the remote state,
// accounts the remote stops returning are left in place.
func (s *accountService) SyncAccounts(ctx context.Context, userID string) ([]models.Account, error) {
	bank, err := s.bankService.GetBank(userID)
	if err != nil {
		return nil, err
	}

	remoteAccounts, err := s.remote.ListAccounts(ctx, bank.AccessToken)
	if err != nil {
		return nil, err
	}

	accounts := make([]models.Account, 0, len(remoteAccounts))
	for _, ra := range remoteAccounts {
		accounts = append(accounts, models.Account{
			ID:       ra.ID,
			BankID:   bank.ID,
			Type:     ra.Type,
			Name:     ra.Name,
			Subtype:  ra.Subtype,
			Currency: ra.Currency,
			LastFour: ra.LastFour,
			Status:   ra.Status,
		})
	}

	if len(accounts) == 0 {
		return accounts, nil
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"bank_id", "type", "name", "subtype", "currency", "last_four", "status", "updated_at"}),
	}).Create(&accounts).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreConflict, err)
	}

	logger.Get().Infow("account sync complete",
		"user_id", userID,
		"bank_id", bank.ID,
		"accounts", len(accounts),
	)

	return accounts, nil
}
