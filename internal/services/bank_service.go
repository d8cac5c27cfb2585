package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "homeledger/internal/errors"
	"homeledger/internal/models"
)

// bankService handles bank enrollment business logic.
type bankService struct {
	db *gorm.DB
}

// NewBankService creates a new BankServicer.
func NewBankService(db *gorm.DB) BankServicer {
	return &bankService{db: db}
}

// LinkBank stores the enrollment produced by the aggregator's connect flow.
// Current design allows a single linked bank per user; the access token is
// written once and never rotated.
func (s *bankService) LinkBank(userID string, link BankLink) (*models.Bank, error) {
	if link.AccessToken == "" || link.EnrollmentID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "access token and enrollment ID are required")
	}

	var count int64
	s.db.Model(&models.Bank{}).Where("user_id = ?", userID).Count(&count)
	if count > 0 {
		return nil, apperrors.ErrBankAlreadyLinked
	}

	bank := &models.Bank{
		ID:              link.EnrollmentID,
		UserID:          userID,
		AccessToken:     link.AccessToken,
		BankUserID:      link.BankUserID,
		EnrollmentID:    link.EnrollmentID,
		InstitutionID:   link.InstitutionID,
		InstitutionName: link.InstitutionName,
	}

	if err := s.db.Create(bank).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreConflict, err)
	}

	return bank, nil
}

// ListBanks returns every linked bank. Used by the scheduled sync endpoint
// to walk all enrollments.
func (s *bankService) ListBanks() ([]models.Bank, error) {
	var banks []models.Bank
	if err := s.db.Order("created_at ASC").Find(&banks).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return banks, nil
}

// GetBank retrieves the bank linked to a user.
func (s *bankService) GetBank(userID string) (*models.Bank, error) {
	var bank models.Bank
	if err := s.db.Where("user_id = ?", userID).First(&bank).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBankNotLinked
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &bank, nil
}
