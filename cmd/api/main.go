package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"homeledger/internal/config"
	"homeledger/internal/database"
	"homeledger/internal/handlers"
	"homeledger/internal/logger"
	"homeledger/internal/middleware"
	"homeledger/internal/services"
	"homeledger/internal/teller"
	"homeledger/internal/validator"

	_ "homeledger/internal/docs" // Import swagger docs
)

// @title           Homeledger API
// @version         1.0
// @description     Homeledger is a personal finance application that links bank accounts through an aggregator and keeps transactions in sync incrementally.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom validation tags
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Aggregator client (mutual TLS + HTTP Basic auth)
	tellerClient, err := teller.NewClient(teller.Config{
		BaseURL:  appConfig.TellerBaseURL,
		CertFile: appConfig.TellerCertFile,
		KeyFile:  appConfig.TellerKeyFile,
		Timeout:  appConfig.TellerTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create aggregator client: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	bankService := services.NewBankService(db)
	accountService := services.NewAccountService(db, bankService, tellerClient)
	transactionService := services.NewTransactionService(db, bankService, accountService, tellerClient,
		appConfig.SyncPageSize, appConfig.SyncBackfillLimit)
	counterpartyService := services.NewCounterpartyService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	bankHandler := handlers.NewBankHandler(bankService, auditService)
	accountHandler := handlers.NewAccountHandler(accountService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	counterpartyHandler := handlers.NewCounterpartyHandler(counterpartyService)
	syncHandler := handlers.NewSyncHandler(bankService, accountService, transactionService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Bank enrollment
	protected.POST("/bank", bankHandler.LinkBank)
	protected.GET("/bank", bankHandler.GetBank)

	// Account routes
	accounts := protected.Group("/accounts")
	accounts.GET("", accountHandler.GetAccounts)
	accounts.POST("/sync", accountHandler.SyncAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.GET("/:id/transactions", transactionHandler.GetAccountTransactions)
	accounts.POST("/:id/transactions/sync", transactionHandler.SyncTransactions)

	// Counterparty routes
	protected.GET("/counterparties", counterpartyHandler.GetCounterparties)

	// Scheduled sync, keyed for the cron caller rather than a user session
	internal := v1.Group("/internal")
	internal.Use(middleware.SyncAuthMiddleware(appConfig.SyncAPIKey))
	internal.POST("/sync", syncHandler.SyncAll)

	log.Infof("Starting Homeledger backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
