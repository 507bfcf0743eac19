package router

import (
	"fmt"
	"strings"

	"github.com/carenation/backend/internal/cache"
	"github.com/carenation/backend/internal/config"
	adminhandlers "github.com/carenation/backend/internal/http/handlers/admin"
	publichandlers "github.com/carenation/backend/internal/http/handlers/public"
	"github.com/carenation/backend/internal/constants"
	"github.com/carenation/backend/internal/logger"
	"github.com/carenation/backend/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires middleware and routes
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		Message:       "too many login attempts",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// uploaded files (payout proofs, product images)
	r.Static("/uploads", "./uploads")

	apiV1 := r.Group("/api/v1")
	{
		// open endpoints
		auth := apiV1.Group("/auth")
		{
			auth.POST("/signup", publicHandler.Signup)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
			auth.POST("/impersonation/redeem", publicHandler.RedeemImpersonation)
		}

		public := apiV1.Group("/public")
		{
			public.GET("/products", publicHandler.ListProducts)
			public.GET("/products/:id", publicHandler.GetProduct)
		}

		// member endpoints
		me := apiV1.Group("")
		me.Use(DistributorJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.DistributorRepo))
		{
			me.GET("/me", publicHandler.Me)
			me.POST("/me/logout", publicHandler.Logout)
			me.PUT("/me/password", publicHandler.ChangePassword)
			me.GET("/me/tree", publicHandler.GetMyTree)
			me.GET("/me/notifications", publicHandler.ListMyNotifications)

			me.GET("/wallet", publicHandler.GetMyBalance)
			me.GET("/wallet/transactions", publicHandler.ListMyWalletTransactions)
			me.POST("/wallet/transfer", publicHandler.Transfer)

			me.POST("/withdrawals", publicHandler.CreateWithdrawal)
			me.GET("/withdrawals", publicHandler.ListMyWithdrawals)

			me.GET("/cart", publicHandler.GetCart)
			me.POST("/cart/items", publicHandler.SetCartItem)
			me.DELETE("/cart/items", publicHandler.RemoveCartItem)
			me.DELETE("/cart", publicHandler.ClearCart)

			me.POST("/payments/khalti/initiate", publicHandler.KhaltiInitiate)
			me.POST("/payments/khalti/verify", publicHandler.KhaltiVerify)

			me.GET("/orders", publicHandler.ListMyOrders)
			me.GET("/orders/:id", publicHandler.GetMyOrder)
		}

		// back-office endpoints
		admin := apiV1.Group("/admin")
		{
			admin.GET("/captcha", adminHandler.Captcha)
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.Login)

			authorized := admin.Use(
				AdminJWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo),
				AdminRBACMiddleware(c.AuthzService),
			)
			{
				authorized.PUT("/password", adminHandler.ChangePassword)
				authorized.POST("/admins", adminHandler.CreateAdmin)

				authorized.GET("/distributors", adminHandler.ListDistributors)
				authorized.GET("/distributors/:id", adminHandler.GetDistributor)
				authorized.GET("/distributors/:id/wallet", adminHandler.GetWalletBalance)

				authorized.GET("/tree/root", adminHandler.GetTreeRoot)
				authorized.GET("/tree/:id", adminHandler.GetSubtree)
				authorized.POST("/tree/:id/reparent", adminHandler.Reparent)

				authorized.GET("/wallet/transactions", adminHandler.ListWalletTransactions)
				authorized.POST("/wallet/adjust", adminHandler.AdjustWallet)

				authorized.GET("/withdrawals", adminHandler.ListWithdrawals)
				authorized.POST("/withdrawals/:id/approve", adminHandler.ApproveWithdrawal)
				authorized.POST("/withdrawals/:id/reject", adminHandler.RejectWithdrawal)
				authorized.PUT("/withdrawals/:id/proof", adminHandler.ReplaceWithdrawalProof)
				authorized.GET("/payments", adminHandler.ListPayouts)

				authorized.GET("/khalti-payments", adminHandler.ListKhaltiPayments)
				authorized.POST("/khalti-payments/reconcile", adminHandler.ReconcileKhalti)

				authorized.GET("/orders", adminHandler.ListOrders)
				authorized.GET("/orders/:id", adminHandler.GetOrder)

				authorized.GET("/products", adminHandler.ListProductsAdmin)
				authorized.GET("/products/:id", adminHandler.GetProductAdmin)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)

				authorized.POST("/impersonation", adminHandler.StartImpersonation)

				authorized.GET("/authz/roles", adminHandler.ListRoles)
				authorized.POST("/authz/roles", adminHandler.CreateRole)
				authorized.DELETE("/authz/roles/:role", adminHandler.DeleteRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetRolePolicies)
				authorized.POST("/authz/roles/:role/policies", adminHandler.GrantRolePolicy)
				authorized.DELETE("/authz/roles/:role/policies", adminHandler.RevokeRolePolicy)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAdminRoles)
				authorized.GET("/authz/admins/:id/policies", adminHandler.GetAdminPolicies)

				authorized.POST("/upload", adminHandler.Upload)
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
