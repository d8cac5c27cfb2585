package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "homeledger/internal/errors"
	"homeledger/internal/pagination"
	"homeledger/internal/services"
)

// CounterpartyHandler handles counterparty listing.
type CounterpartyHandler struct {
	counterpartyService services.CounterpartyServicer
}

// NewCounterpartyHandler creates a new CounterpartyHandler.
func NewCounterpartyHandler(counterpartyService services.CounterpartyServicer) *CounterpartyHandler {
	return &CounterpartyHandler{counterpartyService: counterpartyService}
}

// CounterpartyResponse represents a counterparty in the response.
type CounterpartyResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// GetCounterparties lists the authenticated user's counterparties
// @Summary     List counterparties
// @Description Get a paginated list of the user's counterparties, alphabetical
// @Tags        counterparties
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[CounterpartyResponse] "Counterparties"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /counterparties [get]
func (h *CounterpartyHandler) GetCounterparties(c *gin.Context) {
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

	counterparties, err := h.counterpartyService.GetUserCounterparties(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, counterparties)
}
