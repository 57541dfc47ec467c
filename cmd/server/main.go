package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cattleguard-system/config"
	"cattleguard-system/internal/database"
	"cattleguard-system/internal/gateway/handlers"
	"cattleguard-system/internal/gateway/middleware"
	"cattleguard-system/internal/notify"
	agenthandler "cattleguard-system/internal/services/agent/handler"
	commissionhandler "cattleguard-system/internal/services/commission/handler"
	policyhandler "cattleguard-system/internal/services/policy/handler"
	withdrawalhandler "cattleguard-system/internal/services/withdrawal/handler"
)

func main() {
	cfg := config.LoadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewConnection(cfg.DB.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisClient := config.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	notifier := notify.NewNotifier(&notify.LogSender{Logger: logger}, logger)

	policyService := policyhandler.NewPolicyHandler(db, notifier, logger)
	commissionService := commissionhandler.NewCommissionHandler(db, redisClient, notifier, logger)
	withdrawalService := withdrawalhandler.NewWithdrawalHandler(db, redisClient, notifier, logger, cfg.Withdrawal.MinAmount)
	agentService := agenthandler.NewAgentHandler(db, redisClient, logger)

	policyHandler := handlers.NewPolicyHTTPHandler(policyService)
	commissionHandler := handlers.NewCommissionHTTPHandler(commissionService)
	withdrawalHandler := handlers.NewWithdrawalHTTPHandler(withdrawalService)
	agentHandler := handlers.NewAgentHTTPHandler(agentService)

	r := gin.Default()

	r.Use(middleware.CORS())
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit())

	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth())
	{
		customers := protected.Group("/customers")
		{
			customers.POST("", policyHandler.CreateCustomer)
		}

		policies := protected.Group("/policies")
		{
			policies.POST("", policyHandler.SubmitPolicy)
			policies.GET("", policyHandler.ListPolicies)
			policies.GET("/:id", policyHandler.GetPolicy)
			policies.POST("/:id/payment-confirmation", policyHandler.ConfirmPayment)
			policies.POST("/:id/approve", policyHandler.ApprovePolicy)
			policies.POST("/:id/reject", policyHandler.RejectPolicy)
		}

		commissions := protected.Group("/commissions")
		{
			commissions.GET("", commissionHandler.ListCommissions)
			commissions.GET("/:id", commissionHandler.GetCommission)
			commissions.POST("/:id/approve", commissionHandler.ApproveCommission)
			commissions.POST("/bulk-approve", commissionHandler.BulkApproveCommissions)
		}

		settings := protected.Group("/commission-settings")
		{
			settings.GET("", commissionHandler.ListCommissionSettings)
			settings.PUT("", commissionHandler.UpsertCommissionSetting)
		}

		withdrawals := protected.Group("/withdrawals")
		{
			withdrawals.POST("", withdrawalHandler.RequestWithdrawal)
			withdrawals.GET("", withdrawalHandler.ListWithdrawals)
			withdrawals.GET("/:id", withdrawalHandler.GetWithdrawal)
			withdrawals.POST("/:id/process", withdrawalHandler.ProcessWithdrawal)
		}

		agents := protected.Group("/agents")
		{
			agents.POST("", agentHandler.RegisterAgent)
			agents.GET("/:id", agentHandler.GetAgent)
			agents.POST("/:id/activate", agentHandler.ActivateAgent)
			agents.GET("/:id/wallet", agentHandler.GetWalletSummary)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "Server is running",
			"timestamp": time.Now(),
		})
	})

	port := ":" + cfg.Server.Port
	log.Printf("Starting server on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
