package provider

import (
	"github.com/XTeam-Pro/AIMLM/internal/cache"
	"github.com/XTeam-Pro/AIMLM/internal/config"
	"github.com/XTeam-Pro/AIMLM/internal/logger"
	"github.com/XTeam-Pro/AIMLM/internal/models"
	"github.com/XTeam-Pro/AIMLM/internal/queue"
	"github.com/XTeam-Pro/AIMLM/internal/repository"
	"github.com/XTeam-Pro/AIMLM/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo          repository.AdminRepository
	UserRepo           repository.UserRepository
	ProfileRepo        repository.MLMProfileRepository
	HierarchyRepo      repository.HierarchyRepository
	BusinessCenterRepo repository.BusinessCenterRepository
	BonusRepo          repository.BonusRepository
	GenerationMatrix   repository.GenerationMatrixRepository
	TransactionRepo    repository.TransactionRepository
	ActivityRepo       repository.ActivityRepository
	RankHistoryRepo    repository.RankHistoryRepository
	WalletRepo         repository.WalletRepository
	ProductRepo        repository.ProductRepository
	CartRepo           repository.CartRepository

	// Services
	AuthService            *service.AuthService
	UserAuthService        *service.UserAuthService
	ProductService         *service.ProductService
	CartService            *service.CartService
	WalletService          *service.WalletService
	HierarchyService       *service.HierarchyService
	BinaryTreeService      *service.BinaryTreeService
	ClubService            *service.ClubService
	RankPromotionService   *service.RankPromotionService
	SponsorBonusService    *service.SponsorBonusService
	GenerationBonusService *service.GenerationBonusService
	BinaryBonusService     *service.BinaryBonusService
	MLMService             *service.MLMService
	PurchaseService        *service.PurchaseService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.ProfileRepo = repository.NewMLMProfileRepository(db)
	c.HierarchyRepo = repository.NewHierarchyRepository(db)
	c.BusinessCenterRepo = repository.NewBusinessCenterRepository(db)
	c.BonusRepo = repository.NewBonusRepository(db)
	c.GenerationMatrix = repository.NewGenerationMatrixRepository(db)
	c.TransactionRepo = repository.NewTransactionRepository(db)
	c.ActivityRepo = repository.NewActivityRepository(db)
	c.RankHistoryRepo = repository.NewRankHistoryRepository(db)
	c.WalletRepo = repository.NewWalletRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
}

func (c *Container) initServices() {
	mlmCfg := c.Config.MLM

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.WalletService = service.NewWalletService(c.WalletRepo, c.UserRepo, mlmCfg.CompanyUserEmail)
	c.HierarchyService = service.NewHierarchyService(c.HierarchyRepo, c.ProfileRepo, c.ActivityRepo)
	c.BinaryTreeService = service.NewBinaryTreeService(c.BusinessCenterRepo, c.ProfileRepo, mlmCfg.PlacementRank)
	c.ClubService = service.NewClubService(c.ProfileRepo)
	c.RankPromotionService = service.NewRankPromotionService(c.ProfileRepo, c.RankHistoryRepo, c.HierarchyService, mlmCfg.ActiveLinesRequired)
	c.SponsorBonusService = service.NewSponsorBonusService(c.BonusRepo, c.ProfileRepo, c.TransactionRepo, c.WalletService, mlmCfg.SponsorBonusPercent)
	c.GenerationBonusService = service.NewGenerationBonusService(c.BonusRepo, c.HierarchyRepo, c.ProfileRepo, c.GenerationMatrix, c.WalletService, mlmCfg.GenerationMaxDepth)
	c.BinaryBonusService = service.NewBinaryBonusService(c.BonusRepo, c.BusinessCenterRepo, c.ProfileRepo, c.WalletService, mlmCfg.BinaryBonusPercent)

	var retryQueue service.BonusRetryEnqueuer
	if c.QueueClient != nil {
		retryQueue = c.QueueClient
	}
	c.MLMService = service.NewMLMService(
		c.SponsorBonusService,
		c.GenerationBonusService,
		c.BinaryBonusService,
		c.RankPromotionService,
		c.ClubService,
		retryQueue,
	)

	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.ProfileRepo, c.HierarchyService)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.PurchaseService = service.NewPurchaseService(
		c.ProductRepo,
		c.CartRepo,
		c.TransactionRepo,
		c.ProfileRepo,
		c.HierarchyRepo,
		c.UserRepo,
		c.WalletRepo,
		c.WalletService,
		c.HierarchyService,
		c.BinaryTreeService,
		c.MLMService,
	)
}
