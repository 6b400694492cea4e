package router

import (
	"fmt"
	"strings"

	"github.com/XTeam-Pro/AIMLM/internal/cache"
	"github.com/XTeam-Pro/AIMLM/internal/config"
	adminhandlers "github.com/XTeam-Pro/AIMLM/internal/http/handlers/admin"
	publichandlers "github.com/XTeam-Pro/AIMLM/internal/http/handlers/public"
	"github.com/XTeam-Pro/AIMLM/internal/logger"
	"github.com/XTeam-Pro/AIMLM/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "aimlm"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "登录尝试过于频繁",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "登录尝试过于频繁",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetConfig)
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:slug", publicHandler.GetProductBySlug)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.PUT("/me/profile", publicHandler.UpdateUserProfile)
			user.PUT("/me/password", publicHandler.UserChangePassword)
			user.GET("/cart", publicHandler.GetCart)
			user.POST("/cart/items", publicHandler.UpsertCartItem)
			user.DELETE("/cart/items/:product_id", publicHandler.RemoveCartItem)
			user.DELETE("/cart", publicHandler.ClearCart)
			user.POST("/purchases", publicHandler.CreatePurchase)
			user.POST("/sales", publicHandler.CreateSale)
			user.GET("/wallet", publicHandler.GetMyWallet)
			user.GET("/wallet/transactions", publicHandler.GetMyWalletTransactions)
			user.GET("/mlm/profile", publicHandler.GetMLMProfile)
			user.GET("/mlm/downline", publicHandler.GetMLMDownline)
			user.GET("/mlm/centers", publicHandler.GetMLMCenters)
			user.GET("/mlm/bonuses", publicHandler.GetMLMBonuses)
			user.GET("/mlm/bonuses/generation-preview", publicHandler.GetMLMGenerationPreview)
			user.GET("/mlm/bonuses/binary-preview", publicHandler.GetMLMBinaryPreview)
			user.GET("/mlm/rank-history", publicHandler.GetMLMRankHistory)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			{
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 商品管理
				authorized.GET("/products", adminHandler.GetAdminProducts)
				authorized.GET("/products/:id", adminHandler.GetAdminProduct)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)

				// 用户管理
				authorized.GET("/users", adminHandler.GetAdminUsers)
				authorized.PUT("/users/batch-status", adminHandler.BatchUpdateUserStatus)
				authorized.GET("/users/:id", adminHandler.GetAdminUser)
				authorized.PUT("/users/:id", adminHandler.UpdateAdminUser)
				authorized.GET("/users/:id/wallet", adminHandler.GetAdminUserWallet)
				authorized.GET("/users/:id/wallet/transactions", adminHandler.GetAdminUserWalletTransactions)
				authorized.POST("/users/:id/wallet/adjust", adminHandler.AdjustAdminUserWallet)

				// MLM 结算管理
				authorized.GET("/mlm/generation-matrix", adminHandler.GetGenerationMatrix)
				authorized.PUT("/mlm/generation-matrix", adminHandler.UpsertGenerationMatrix)
				authorized.POST("/mlm/placement/run", adminHandler.RunPlacementCron)
				authorized.POST("/mlm/generation-batch/run", adminHandler.RunGenerationBatch)
				authorized.GET("/mlm/bonuses", adminHandler.GetAdminBonuses)
				authorized.GET("/mlm/transactions", adminHandler.GetAdminTransactions)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
