package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "homeledger/internal/errors"
	"homeledger/internal/pagination"
	"homeledger/internal/services"
)

// AccountHandler handles account listing and account sync requests.
type AccountHandler struct {
	accountService services.AccountServicer
	auditService   services.AuditServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer, auditService services.AuditServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService, auditService: auditService}
}

// AccountResponse represents a synced account in the response.
type AccountResponse struct {
	ID       string `json:"id"`
	BankID   string `json:"bank_id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Subtype  string `json:"subtype"`
	Currency string `json:"currency"`
	LastFour string `json:"last_four"`
	Status   string `json:"status"`
}

// GetAccounts lists the authenticated user's synced accounts
// @Summary     List accounts
// @Description Get a paginated list of the user's synced bank accounts
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[AccountResponse] "Accounts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [get]
func (h *AccountHandler) GetAccounts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	accounts, err := h.accountService.GetUserAccounts(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, accounts)
}

// GetAccountByID returns a single account owned by the authenticated user
// @Summary     Get an account
// @Description Get one of the user's synced accounts by ID
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} AccountResponse "Account"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [get]
func (h *AccountHandler) GetAccountByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.GetAccountByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// SyncAccounts fetches the remote account list and upserts it
// @Summary     Sync accounts
// @Description Fetch the account list from the linked bank and upsert it
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} pagination.PageResponse[AccountResponse] "Synced accounts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No bank linked"
// @Failure     502 {object} ErrorResponse "Remote API failure"
// @Router      /accounts/sync [post]
func (h *AccountHandler) SyncAccounts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accounts, err := h.accountService.SyncAccounts(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SYNC_ACCOUNTS", "account", "", c.ClientIP(),
		map[string]interface{}{"count": len(accounts)})

	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}
