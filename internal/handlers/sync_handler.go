package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homeledger/internal/logger"
	"homeledger/internal/services"
)

// SyncHandler drives scheduled syncs across every linked bank. It sits behind
// the sync API key, not user auth; a cron job is the expected caller.
type SyncHandler struct {
	bankService        services.BankServicer
	accountService     services.AccountServicer
	transactionService services.TransactionServicer
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(bankService services.BankServicer, accountService services.AccountServicer, transactionService services.TransactionServicer) *SyncHandler {
	return &SyncHandler{
		bankService:        bankService,
		accountService:     accountService,
		transactionService: transactionService,
	}
}

// SyncAllResult summarizes a scheduled sync run.
type SyncAllResult struct {
	Banks    int `json:"banks"`
	Accounts int `json:"accounts"`
	Ingested int `json:"ingested"`
	Failures int `json:"failures"`
}

// SyncAll refreshes accounts and transactions for every linked bank
// @Summary     Sync all enrollments
// @Description Refresh the account list and pull new transactions for every linked bank
// @Tags        sync
// @Produce     json
// @Param       X-API-Key header string true "Sync API key"
// @Success     200 {object} SyncAllResult "Run summary"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /internal/sync [post]
func (h *SyncHandler) SyncAll(c *gin.Context) {
	banks, err := h.bankService.ListBanks()
	if err != nil {
		respondWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	summary := SyncAllResult{Banks: len(banks)}

	// One enrollment failing must not starve the rest; failures are counted
	// and logged, and the run carries on.
	for _, bank := range banks {
		accounts, err := h.accountService.SyncAccounts(ctx, bank.UserID)
		if err != nil {
			summary.Failures++
			logger.Get().Warnw("scheduled account sync failed",
				"user_id", bank.UserID,
				"bank_id", bank.ID,
				"error", err.Error(),
			)
			continue
		}
		summary.Accounts += len(accounts)

		for _, account := range accounts {
			result, err := h.transactionService.SyncTransactions(ctx, bank.UserID, account.ID)
			if err != nil {
				summary.Failures++
				logger.Get().Warnw("scheduled transaction sync failed",
					"user_id", bank.UserID,
					"account_id", account.ID,
					"error", err.Error(),
				)
				continue
			}
			summary.Ingested += result.Ingested
		}
	}

	logger.Get().Infow("scheduled sync complete",
		"banks", summary.Banks,
		"accounts", summary.Accounts,
		"ingested", summary.Ingested,
		"failures", summary.Failures,
	)

	c.JSON(http.StatusOK, gin.H{"sync": summary})
}
