package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "homeledger/internal/errors"
	"homeledger/internal/models"
	"homeledger/internal/services"
)

// --- mock bank service ---

type mockBankService struct {
	linkBankFn  func(userID string, link services.BankLink) (*models.Bank, error)
	getBankFn   func(userID string) (*models.Bank, error)
	listBanksFn func() ([]models.Bank, error)
}

func (m *mockBankService) LinkBank(userID string, link services.BankLink) (*models.Bank, error) {
	if m.linkBankFn != nil {
		return m.linkBankFn(userID, link)
	}
	return &models.Bank{ID: link.EnrollmentID, UserID: userID, InstitutionID: link.InstitutionID, InstitutionName: link.InstitutionName}, nil
}

func (m *mockBankService) GetBank(userID string) (*models.Bank, error) {
	if m.getBankFn != nil {
		return m.getBankFn(userID)
	}
	return &models.Bank{ID: "enr_1", UserID: userID, InstitutionID: "chase", InstitutionName: "Chase"}, nil
}

func (m *mockBankService) ListBanks() ([]models.Bank, error) {
	if m.listBanksFn != nil {
		return m.listBanksFn()
	}
	return nil, nil
}

var _ services.BankServicer = (*mockBankService)(nil)

func setupBankRouter(handler *BankHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID("usr_1"))
	auth.POST("/bank", handler.LinkBank)
	auth.GET("/bank", handler.GetBank)
	return r
}

func TestBankHandler_LinkBank(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		handler := NewBankHandler(&mockBankService{}, &mockAuditService{})
		r := setupBankRouter(handler)

		rec := doRequest(r, "POST", "/bank",
			`{"access_token":"token_abc","enrollment_id":"enr_abc","institution_id":"chase","institution_name":"Chase"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		bank := result["bank"].(map[string]interface{})
		if bank["id"] != "enr_abc" {
			t.Errorf("expected bank id enr_abc, got %v", bank["id"])
		}
		if _, leaked := bank["access_token"]; leaked {
			t.Error("access token must never appear in responses")
		}
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		handler := NewBankHandler(&mockBankService{}, &mockAuditService{})
		r := setupBankRouter(handler)

		rec := doRequest(r, "POST", "/bank", `{"access_token":"token_abc"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("propagates already linked", func(t *testing.T) {
		handler := NewBankHandler(&mockBankService{
			linkBankFn: func(_ string, _ services.BankLink) (*models.Bank, error) {
				return nil, apperrors.ErrBankAlreadyLinked
			},
		}, &mockAuditService{})
		r := setupBankRouter(handler)

		rec := doRequest(r, "POST", "/bank",
			`{"access_token":"token_abc","enrollment_id":"enr_abc","institution_id":"chase","institution_name":"Chase"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BANK_ALREADY_LINKED")
	})
}

func TestBankHandler_GetBank(t *testing.T) {
	t.Run("returns the linked bank", func(t *testing.T) {
		handler := NewBankHandler(&mockBankService{}, &mockAuditService{})
		r := setupBankRouter(handler)

		rec := doRequest(r, "GET", "/bank", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		bank := result["bank"].(map[string]interface{})
		if bank["institution_name"] != "Chase" {
			t.Errorf("unexpected bank payload: %v", bank)
		}
	})

	t.Run("returns 404 when no bank is linked", func(t *testing.T) {
		handler := NewBankHandler(&mockBankService{
			getBankFn: func(_ string) (*models.Bank, error) {
				return nil, apperrors.ErrBankNotLinked
			},
		}, &mockAuditService{})
		r := setupBankRouter(handler)

		rec := doRequest(r, "GET", "/bank", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BANK_NOT_LINKED")
	})
}
