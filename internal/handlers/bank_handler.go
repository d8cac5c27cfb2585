package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "homeledger/internal/errors"
	"homeledger/internal/services"
)

// BankHandler handles bank enrollment requests.
type BankHandler struct {
	bankService  services.BankServicer
	auditService services.AuditServicer
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(bankService services.BankServicer, auditService services.AuditServicer) *BankHandler {
	return &BankHandler{bankService: bankService, auditService: auditService}
}

// LinkBankRequest carries the enrollment produced by the aggregator's
// connect flow.
type LinkBankRequest struct {
	AccessToken     string `json:"access_token" binding:"required"`
	EnrollmentID    string `json:"enrollment_id" binding:"required"`
	BankUserID      string `json:"bank_user_id"`
	InstitutionID   string `json:"institution_id" binding:"required"`
	InstitutionName string `json:"institution_name" binding:"required"`
}

// BankResponse represents a linked bank. The access token is never included.
type BankResponse struct {
	ID              string `json:"id"`
	InstitutionID   string `json:"institution_id"`
	InstitutionName string `json:"institution_name"`
}

// LinkBank stores a new bank enrollment for the authenticated user
// @Summary     Link a bank
// @Description Store the enrollment produced by the aggregator connect flow
// @Tags        bank
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body LinkBankRequest true "Enrollment data"
// @Success     201 {object} BankResponse "Bank linked"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "A bank is already linked"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bank [post]
func (h *BankHandler) LinkBank(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req LinkBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	bank, err := h.bankService.LinkBank(userID, services.BankLink{
		AccessToken:     req.AccessToken,
		EnrollmentID:    req.EnrollmentID,
		BankUserID:      req.BankUserID,
		InstitutionID:   req.InstitutionID,
		InstitutionName: req.InstitutionName,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "LINK_BANK", "bank", bank.ID, c.ClientIP(),
		map[string]interface{}{"institution_id": req.InstitutionID})

	c.JSON(http.StatusCreated, gin.H{"bank": gin.H{
		"id":               bank.ID,
		"institution_id":   bank.InstitutionID,
		"institution_name": bank.InstitutionName,
	}})
}

// GetBank returns the authenticated user's linked bank
// @Summary     Get linked bank
// @Description Get the bank currently linked to the authenticated user
// @Tags        bank
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} BankResponse "Linked bank"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No bank linked"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bank [get]
func (h *BankHandler) GetBank(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	bank, err := h.bankService.GetBank(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bank": gin.H{
		"id":               bank.ID,
		"institution_id":   bank.InstitutionID,
		"institution_name": bank.InstitutionName,
	}})
}
