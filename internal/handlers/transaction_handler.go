package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "homeledger/internal/errors"
	"homeledger/internal/pagination"
	"homeledger/internal/services"
)

// TransactionHandler handles transaction listing and transaction sync.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// TransactionResponse represents a stored transaction in the response.
type TransactionResponse struct {
	ID             string `json:"id"`
	AccountID      string `json:"account_id"`
	CounterpartyID string `json:"counterparty_id"`
	Description    string `json:"description"`
	Amount         string `json:"amount"`
	Date           string `json:"date"`
	Type           string `json:"type"`
	Status         string `json:"status"`
	Category       string `json:"category"`
}

// GetAccountTransactions lists stored transactions for an account
// @Summary     List transactions
// @Description Get a paginated list of an account's transactions, newest first
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[TransactionResponse] "Transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id}/transactions [get]
func (h *TransactionHandler) GetAccountTransactions(c *gin.Context) {
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

	transactions, err := h.transactionService.GetAccountTransactions(userID, c.Param("id"), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// SyncTransactions runs the ingestion engine for one account
// @Summary     Sync transactions
// @Description Pull new transactions for an account from the linked bank
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} services.SyncResult "Sync summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found or no bank linked"
// @Failure     502 {object} ErrorResponse "Remote API failure or incomplete sync"
// @Router      /accounts/{id}/transactions/sync [post]
func (h *TransactionHandler) SyncTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID := c.Param("id")
	result, err := h.transactionService.SyncTransactions(c.Request.Context(), userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SYNC_TRANSACTIONS", "account", accountID, c.ClientIP(),
		map[string]interface{}{"mode": string(result.Mode), "ingested": result.Ingested})

	c.JSON(http.StatusOK, gin.H{"sync": result})
}
