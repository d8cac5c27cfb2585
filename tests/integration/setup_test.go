package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"homeledger/internal/handlers"
	"homeledger/internal/logger"
	"homeledger/internal/middleware"
	"homeledger/internal/models"
	"homeledger/internal/services"
	"homeledger/internal/teller"
	"homeledger/internal/validator"
)

const (
	testAccessToken = "token_integration_abc"
	testSyncAPIKey  = "sync-key-integration"
)

// testApp holds the full application stack for integration tests, backed by
// an in-memory database and a fake aggregator HTTP server.
type testApp struct {
	DB         *gorm.DB
	Router     *gin.Engine
	Aggregator *fakeAggregator
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// fakeAggregator is an httptest server speaking the aggregator's REST API.
// Feeds are newest first, like the real one. Tests mutate the feed between
// sync calls to simulate new activity at the bank.
type fakeAggregator struct {
	mu       sync.Mutex
	srv      *httptest.Server
	accounts []teller.Account
	feeds    map[string][]teller.Transaction
}

func newFakeAggregator(t *testing.T) *fakeAggregator {
	t.Helper()

	agg := &fakeAggregator{feeds: make(map[string][]teller.Transaction)}
	agg.srv = httptest.NewServer(http.HandlerFunc(agg.handle))
	t.Cleanup(agg.srv.Close)
	return agg
}

func (a *fakeAggregator) handle(w http.ResponseWriter, r *http.Request) {
	token, _, ok := r.BasicAuth()
	if !ok || token != testAccessToken {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/accounts" {
		json.NewEncoder(w).Encode(a.accounts)
		return
	}

	// /accounts/{id}/transactions
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[0] != "accounts" || parts[2] != "transactions" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	feed := a.feeds[parts[1]]

	if fromID := r.URL.Query().Get("from_id"); fromID != "" {
		start := len(feed)
		for i, txn := range feed {
			if txn.ID == fromID {
				start = i + 1
				break
			}
		}
		feed = feed[start:]
	}
	if countParam := r.URL.Query().Get("count"); countParam != "" {
		count, err := strconv.Atoi(countParam)
		if err == nil && count < len(feed) {
			feed = feed[:count]
		}
	}

	json.NewEncoder(w).Encode(feed)
}

// setAccounts replaces the account list served by the fake aggregator.
func (a *fakeAggregator) setAccounts(accounts ...teller.Account) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accounts = accounts
}

// setFeed replaces an account's transaction feed. Transactions must be in
// newest-first order.
func (a *fakeAggregator) setFeed(accountID string, feed ...teller.Transaction) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.feeds[accountID] = feed
}

// prepend pushes new transactions onto the head of an account's feed.
func (a *fakeAggregator) prepend(accountID string, txns ...teller.Transaction) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.feeds[accountID] = append(txns, a.feeds[accountID]...)
}

// aggAccount builds a valid wire account for the fake aggregator.
func aggAccount(id, name string) teller.Account {
	return teller.Account{
		ID:           id,
		EnrollmentID: "enr_integration_1",
		Links: teller.AccountLinks{
			Balances:     "https://api.example.com/accounts/" + id + "/balances",
			Self:         "https://api.example.com/accounts/" + id,
			Transactions: "https://api.example.com/accounts/" + id + "/transactions",
		},
		Institution: teller.Institution{ID: "first_bank", Name: "First Bank"},
		Type:        "depository",
		Name:        name,
		Subtype:     "checking",
		Currency:    "USD",
		LastFour:    "4321",
		Status:      "open",
	}
}

// aggTxn builds a valid wire transaction for the fake aggregator.
func aggTxn(id, accountID, date, amount, counterparty string) teller.Transaction {
	details := teller.TransactionDetails{ProcessingStatus: "complete"}
	if counterparty != "" {
		ctype := "organization"
		details.Counterparty = &teller.Counterparty{Name: &counterparty, Type: &ctype}
		details.Category = &counterparty
	}
	return teller.Transaction{
		ID:          id,
		AccountID:   accountID,
		Amount:      amount,
		Date:        date,
		Description: "card purchase",
		Details:     details,
		Status:      "posted",
		Links: teller.TransactionLinks{
			Self:    "https://api.example.com/accounts/" + accountID + "/transactions/" + id,
			Account: "https://api.example.com/accounts/" + accountID,
		},
		Type: "card_payment",
	}
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Bank{},
		&models.Account{},
		&models.Counterparty{},
		&models.Transaction{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack: in-memory database, real
// aggregator HTTP client pointed at the fake aggregator, all services and
// handlers, and the production route layout.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	agg := newFakeAggregator(t)

	remote, err := teller.NewClient(teller.Config{BaseURL: agg.srv.URL})
	if err != nil {
		t.Fatalf("failed to build aggregator client: %v", err)
	}

	// Services
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	bankService := services.NewBankService(db)
	accountService := services.NewAccountService(db, bankService, remote)
	transactionService := services.NewTransactionService(db, bankService, accountService, remote, 100, 2000)
	counterpartyService := services.NewCounterpartyService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	bankHandler := handlers.NewBankHandler(bankService, auditService)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	counterpartyHandler := handlers.NewCounterpartyHandler(counterpartyService)
	syncHandler := handlers.NewSyncHandler(bankService, accountService, transactionService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	protected.POST("/bank", bankHandler.LinkBank)
	protected.GET("/bank", bankHandler.GetBank)

	accounts := protected.Group("/accounts")
	accounts.GET("", accountHandler.GetAccounts)
	accounts.POST("/sync", accountHandler.SyncAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.GET("/:id/transactions", transactionHandler.GetAccountTransactions)
	accounts.POST("/:id/transactions/sync", transactionHandler.SyncTransactions)

	protected.GET("/counterparties", counterpartyHandler.GetCounterparties)

	// Internal routes for the scheduler
	internal := v1.Group("/internal")
	internal.Use(middleware.SyncAuthMiddleware(testSyncAPIKey))
	internal.POST("/sync", syncHandler.SyncAll)

	return &testApp{DB: db, Router: router, Aggregator: agg}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh
// token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// linkBank links the fake aggregator enrollment to the user.
func (app *testApp) linkBank(t *testing.T, token string) {
	t.Helper()
	body := fmt.Sprintf(`{"access_token":%q,"enrollment_id":"enr_integration_1","institution_id":"first_bank","institution_name":"First Bank"}`, testAccessToken)
	rec := app.request("POST", "/api/v1/bank", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("link bank failed: %d %s", rec.Code, rec.Body.String())
	}
}
