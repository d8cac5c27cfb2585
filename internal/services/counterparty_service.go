package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "homeledger/internal/errors"
	"homeledger/internal/models"
	"homeledger/internal/pagination"
	"homeledger/internal/uuid"
)

// counterpartyService handles counterparty listing.
type counterpartyService struct {
	db *gorm.DB
}

// NewCounterpartyService creates a new CounterpartyServicer.
func NewCounterpartyService(db *gorm.DB) CounterpartyServicer {
	return &counterpartyService{db: db}
}

// GetUserCounterparties retrieves a paginated list of the user's counterparties.
func (s *counterpartyService) GetUserCounterparties(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Counterparty], error) {
	page.Defaults()

	base := s.db.Model(&models.Counterparty{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var counterparties []models.Counterparty
	if err := base.Scopes(pagination.Paginate(page)).
		Order("name ASC").
		Find(&counterparties).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(counterparties, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// counterpartyResolver maps free-text counterparty names to stable
// counterparty identities for a single sync invocation. Existing rows are
// bulk-loaded once; names first seen during the run are assigned a fresh ID
// and queued, so two transactions sharing a new name within one run resolve
// to the same identity. Queued rows must be flushed before the transactions
// referencing them are committed.
type counterpartyResolver struct {
	userID  string
	known   map[string]string
	pending []models.Counterparty
}

// newCounterpartyResolver loads the user's existing counterparties and
// returns a resolver scoped to this sync invocation.
func newCounterpartyResolver(db *gorm.DB, userID string) (*counterpartyResolver, error) {
	var existing []models.Counterparty
	if err := db.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	known := make(map[string]string, len(existing))
	for _, cp := range existing {
		known[cp.Name] = cp.ID
	}

	return &counterpartyResolver{userID: userID, known: known}, nil
}

// Resolve returns the stable counterparty ID for a (name, type) pair,
// creating and memoizing a new identity the first time a name is seen.
// Empty name or type map to the shared "unknown" sentinel.
func (r *counterpartyResolver) Resolve(name, ctype string) string {
	if name == "" {
		name = models.CounterpartyUnknown
	}
	if ctype == "" {
		ctype = models.CounterpartyUnknown
	}

	if id, ok := r.known[name]; ok {
		return id
	}

	cp := models.Counterparty{
		UserID: r.userID,
		Name:   name,
		Type:   ctype,
	}
	cp.ID = uuid.New()

	r.known[name] = cp.ID
	r.pending = append(r.pending, cp)
	return cp.ID
}

// Flush writes the counterparties created since the last flush. Insert is
// insert-or-ignore on (user_id, name) so a concurrent sync of the same
// account cannot produce duplicate rows.
func (r *counterpartyResolver) Flush(tx *gorm.DB) error {
	if len(r.pending) == 0 {
		return nil
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
		DoNothing: true,
	}).Create(&r.pending).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStoreConflict, err)
	}

	r.pending = r.pending[:0]
	return nil
}
