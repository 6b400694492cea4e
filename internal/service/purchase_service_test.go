package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/XTeam-Pro/AIMLM/internal/constants"
	"github.com/XTeam-Pro/AIMLM/internal/models"
	"github.com/XTeam-Pro/AIMLM/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type purchaseTestEnv struct {
	svc       *PurchaseService
	walletSvc *WalletService
	db        *gorm.DB
}

// setupPurchaseTest 搭建完整购买链路：钱包、层级、双轨树和奖金编排全部接真实实现
func setupPurchaseTest(t *testing.T) *purchaseTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:purchase_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.MLMProfile{},
		&models.HierarchyEdge{},
		&models.BusinessCenter{},
		&models.Bonus{},
		&models.GenerationBonusMatrix{},
		&models.UserActivity{},
		&models.UserRankHistory{},
		&models.Transaction{},
		&models.WalletAccount{},
		&models.WalletTransaction{},
		&models.Product{},
		&models.CartItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewMLMProfileRepository(db)
	hierarchyRepo := repository.NewHierarchyRepository(db)
	centerRepo := repository.NewBusinessCenterRepository(db)
	bonusRepo := repository.NewBonusRepository(db)
	matrixRepo := repository.NewGenerationMatrixRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	rankHistoryRepo := repository.NewRankHistoryRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)

	walletSvc := NewWalletService(walletRepo, userRepo, testCompanyEmail)
	hierarchySvc := NewHierarchyService(hierarchyRepo, profileRepo, activityRepo)
	binaryTreeSvc := NewBinaryTreeService(centerRepo, profileRepo, constants.RankOneCarat)
	sponsorSvc := NewSponsorBonusService(bonusRepo, profileRepo, transactionRepo, walletSvc, 5)
	generationSvc := NewGenerationBonusService(bonusRepo, hierarchyRepo, profileRepo, matrixRepo, walletSvc, constants.GenerationMaxDepth)
	binaryBonusSvc := NewBinaryBonusService(bonusRepo, centerRepo, profileRepo, walletSvc, 10)
	rankSvc := NewRankPromotionService(profileRepo, rankHistoryRepo, hierarchySvc, constants.ActiveLinesRequired)
	clubSvc := NewClubService(profileRepo)
	mlmSvc := NewMLMService(sponsorSvc, generationSvc, binaryBonusSvc, rankSvc, clubSvc, nil)

	svc := NewPurchaseService(productRepo, cartRepo, transactionRepo, profileRepo, hierarchyRepo,
		userRepo, walletRepo, walletSvc, hierarchySvc, binaryTreeSvc, mlmSvc)
	return &purchaseTestEnv{svc: svc, walletSvc: walletSvc, db: db}
}

func createPurchaseProduct(t *testing.T, db *gorm.DB, slug string, price, pv int64, active bool) *models.Product {
	t.Helper()
	product := models.Product{
		Slug:        slug,
		Name:        slug,
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		PVValue:     models.NewMoneyFromDecimal(decimal.NewFromInt(pv)),
		IsActive:    active,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return &product
}

func fundUser(t *testing.T, walletSvc *WalletService, userID uint, amount int64) {
	t.Helper()
	if _, _, err := walletSvc.AdminAdjustBalance(WalletAdjustInput{
		UserID: userID,
		Delta:  models.NewMoneyFromDecimal(decimal.NewFromInt(amount)),
		Remark: "测试充值",
	}); err != nil {
		t.Fatalf("fund user %d failed: %v", userID, err)
	}
}

func assertBalance(t *testing.T, walletSvc *WalletService, userID uint, expected string) {
	t.Helper()
	account, err := walletSvc.GetAccount(userID)
	if err != nil {
		t.Fatalf("get account %d failed: %v", userID, err)
	}
	want, err := decimal.NewFromString(expected)
	if err != nil {
		t.Fatalf("parse expected balance failed: %v", err)
	}
	if !account.Balance.Decimal.Equal(want) {
		t.Fatalf("user %d: expected balance %s, got %s", userID, expected, account.Balance.String())
	}
}

func TestPurchaseInsufficientBalanceNoMutation(t *testing.T) {
	env := setupPurchaseTest(t)
	createCompanyUser(t, env.walletSvc, env.db, 1, decimal.Zero)
	createTestUser(t, env.db, 51)
	createTestProfile(t, env.db, 51, nil)
	fundUser(t, env.walletSvc, 51, 50)
	product := createPurchaseProduct(t, env.db, "starter-pack", 75, 60, true)

	_, err := env.svc.ProcessPurchase(51, product.ID)
	if !errors.Is(err, ErrWalletInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got: %v", err)
	}

	assertBalance(t, env.walletSvc, 51, "50")
	var txnCount int64
	if err := env.db.Model(&models.Transaction{}).Count(&txnCount).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if txnCount != 0 {
		t.Fatalf("transaction recorded despite failed purchase: %d", txnCount)
	}
}

func TestPurchaseInactiveProduct(t *testing.T) {
	env := setupPurchaseTest(t)
	createCompanyUser(t, env.walletSvc, env.db, 1, decimal.Zero)
	createTestUser(t, env.db, 52)
	fundUser(t, env.walletSvc, 52, 500)
	product := createPurchaseProduct(t, env.db, "legacy-bundle", 100, 80, false)

	if _, err := env.svc.ProcessPurchase(52, product.ID); !errors.Is(err, ErrProductInactive) {
		t.Fatalf("expected inactive product, got: %v", err)
	}
}

func TestProcessPurchaseDirect(t *testing.T) {
	env := setupPurchaseTest(t)
	createCompanyUser(t, env.walletSvc, env.db, 1, decimal.Zero)
	createTestUser(t, env.db, 53)
	createTestProfile(t, env.db, 53, nil)
	fundUser(t, env.walletSvc, 53, 200)
	product := createPurchaseProduct(t, env.db, "wellness-essentials", 120, 100, true)

	result, err := env.svc.ProcessPurchase(53, product.ID)
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if result.TransactionID == 0 {
		t.Fatalf("missing transaction id")
	}
	if !result.CashAmount.Decimal.Equal(decimal.NewFromInt(120)) || !result.PVAmount.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected result: %+v", result)
	}

	assertBalance(t, env.walletSvc, 53, "80")
	assertBalance(t, env.walletSvc, 1, "120")

	var txn models.Transaction
	if err := env.db.First(&txn, result.TransactionID).Error; err != nil {
		t.Fatalf("load transaction failed: %v", err)
	}
	if txn.Type != constants.TransactionTypePurchase || txn.Status != constants.TransactionStatusCompleted {
		t.Fatalf("unexpected transaction: %+v", txn)
	}

	var profile models.MLMProfile
	if err := env.db.Where("user_id = ?", 53).First(&profile).Error; err != nil {
		t.Fatalf("load profile failed: %v", err)
	}
	if !profile.PersonalVolume.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected personal volume: %s", profile.PersonalVolume.String())
	}
	if !profile.AccumulatedVolume.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected accumulated volume: %s", profile.AccumulatedVolume.String())
	}

	var activityCount int64
	if err := env.db.Model(&models.UserActivity{}).Where("profile_id = ?", profile.ID).Count(&activityCount).Error; err != nil {
		t.Fatalf("count activities failed: %v", err)
	}
	if activityCount != 1 {
		t.Fatalf("expected 1 activity row, got %d", activityCount)
	}
}

func TestProcessPurchaseSettlesSponsorBonus(t *testing.T) {
	env := setupPurchaseTest(t)
	createCompanyUser(t, env.walletSvc, env.db, 1, decimal.NewFromInt(1000))
	createTestUser(t, env.db, 54)
	createTestUser(t, env.db, 55)
	sponsorID := uint(54)
	createTestProfile(t, env.db, 54, nil)
	createTestProfile(t, env.db, 55, &sponsorID)
	if err := env.db.Create(&models.HierarchyEdge{
		AncestorID:   54,
		DescendantID: 55,
		Level:        1,
		CreatedAt:    time.Now(),
	}).Error; err != nil {
		t.Fatalf("create edge failed: %v", err)
	}
	fundUser(t, env.walletSvc, 55, 200)
	product := createPurchaseProduct(t, env.db, "premium-collection", 120, 100, true)

	if _, err := env.svc.ProcessPurchase(55, product.ID); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	// 事务提交后：推荐人得首单 PV 的 5%，团队业绩沿保荐链上累计
	assertBalance(t, env.walletSvc, 54, "5")
	var sponsorProfile models.MLMProfile
	if err := env.db.Where("user_id = ?", 54).First(&sponsorProfile).Error; err != nil {
		t.Fatalf("load sponsor profile failed: %v", err)
	}
	if !sponsorProfile.GroupVolume.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected group volume: %s", sponsorProfile.GroupVolume.String())
	}

	var bonus models.Bonus
	if err := env.db.Where("reference = ?", "sponsor:54:55").First(&bonus).Error; err != nil {
		t.Fatalf("sponsor bonus row missing: %v", err)
	}
	if !bonus.IsPaid || !bonus.Amount.Decimal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected bonus: %+v", bonus)
	}
}

func TestProcessSaleRetailSplit(t *testing.T) {
	env := setupPurchaseTest(t)
	createCompanyUser(t, env.walletSvc, env.db, 1, decimal.NewFromInt(1000))
	createTestUser(t, env.db, 56)
	createTestUser(t, env.db, 57)
	createTestUser(t, env.db, 58)
	sponsorID := uint(56)
	createTestProfile(t, env.db, 56, nil)
	createTestProfile(t, env.db, 57, &sponsorID)
	fundUser(t, env.walletSvc, 57, 150)
	// PV 为 0 的商品只分现金，不产生业绩
	product := createPurchaseProduct(t, env.db, "sample-kit", 100, 0, true)

	result, err := env.svc.ProcessSale(58, 57, product.ID)
	if err != nil {
		t.Fatalf("sale failed: %v", err)
	}
	if result.TransactionID == 0 {
		t.Fatalf("missing transaction id")
	}

	// 第三方零售：买家付 100，卖家得 30，公司得余额 70，保荐人不参与分成
	assertBalance(t, env.walletSvc, 57, "50")
	assertBalance(t, env.walletSvc, 58, "30")
	assertBalance(t, env.walletSvc, 56, "0")
	assertBalance(t, env.walletSvc, 1, "1070")

	var txn models.Transaction
	if err := env.db.First(&txn, result.TransactionID).Error; err != nil {
		t.Fatalf("load transaction failed: %v", err)
	}
	if txn.Type != constants.TransactionTypeRetailSale || txn.SellerID == nil || *txn.SellerID != 58 {
		t.Fatalf("unexpected transaction: %+v", txn)
	}
}

func TestProcessSaleBySponsorGetsHalf(t *testing.T) {
	env := setupPurchaseTest(t)
	createCompanyUser(t, env.walletSvc, env.db, 1, decimal.NewFromInt(1000))
	createTestUser(t, env.db, 62)
	createTestUser(t, env.db, 63)
	sponsorID := uint(62)
	createTestProfile(t, env.db, 62, nil)
	createTestProfile(t, env.db, 63, &sponsorID)
	fundUser(t, env.walletSvc, 63, 100)
	product := createPurchaseProduct(t, env.db, "sponsor-kit", 100, 0, true)

	result, err := env.svc.ProcessSale(62, 63, product.ID)
	if err != nil {
		t.Fatalf("sale failed: %v", err)
	}

	// 卖家就是买家保荐人：单一 50% 分成，不与零售分成叠加
	assertBalance(t, env.walletSvc, 62, "50")
	assertBalance(t, env.walletSvc, 63, "0")
	assertBalance(t, env.walletSvc, 1, "1050")

	var txn models.Transaction
	if err := env.db.First(&txn, result.TransactionID).Error; err != nil {
		t.Fatalf("load transaction failed: %v", err)
	}
	if txn.Type != constants.TransactionTypeNetworkSale {
		t.Fatalf("expected network_sale transaction, got: %s", txn.Type)
	}
}

func TestProcessSaleCreditsVolumeToSeller(t *testing.T) {
	env := setupPurchaseTest(t)
	createCompanyUser(t, env.walletSvc, env.db, 1, decimal.NewFromInt(1000))
	createTestUser(t, env.db, 64)
	createTestUser(t, env.db, 65)
	sellerProfile := createTestProfile(t, env.db, 64, nil)
	createTestProfile(t, env.db, 65, nil)
	fundUser(t, env.walletSvc, 65, 200)
	product := createPurchaseProduct(t, env.db, "volume-kit", 100, 80, true)

	if _, err := env.svc.ProcessSale(64, 65, product.ID); err != nil {
		t.Fatalf("sale failed: %v", err)
	}

	// 销售业绩记在卖家名下，买家档案不变
	var seller, buyer models.MLMProfile
	if err := env.db.Where("user_id = ?", 64).First(&seller).Error; err != nil {
		t.Fatalf("load seller profile failed: %v", err)
	}
	if err := env.db.Where("user_id = ?", 65).First(&buyer).Error; err != nil {
		t.Fatalf("load buyer profile failed: %v", err)
	}
	if !seller.PersonalVolume.Decimal.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("unexpected seller personal volume: %s", seller.PersonalVolume.String())
	}
	if !buyer.PersonalVolume.Decimal.IsZero() {
		t.Fatalf("buyer volume should stay zero, got: %s", buyer.PersonalVolume.String())
	}

	var activity models.UserActivity
	if err := env.db.Where("profile_id = ?", sellerProfile.ID).First(&activity).Error; err != nil {
		t.Fatalf("seller activity row missing: %v", err)
	}
	if activity.ActivityType != constants.ActivityTypeRetailSale {
		t.Fatalf("unexpected activity type: %s", activity.ActivityType)
	}
}

func TestProcessSaleWithoutSponsorIsRetail(t *testing.T) {
	env := setupPurchaseTest(t)
	createCompanyUser(t, env.walletSvc, env.db, 1, decimal.Zero)
	createTestUser(t, env.db, 59)
	createTestUser(t, env.db, 60)
	createTestProfile(t, env.db, 59, nil)
	fundUser(t, env.walletSvc, 59, 100)
	product := createPurchaseProduct(t, env.db, "no-sponsor-kit", 100, 0, true)

	if _, err := env.svc.ProcessSale(60, 59, product.ID); err != nil {
		t.Fatalf("sale failed: %v", err)
	}

	// 买家无保荐人：按零售计，卖家 30%，公司得余额
	assertBalance(t, env.walletSvc, 59, "0")
	assertBalance(t, env.walletSvc, 60, "30")
	assertBalance(t, env.walletSvc, 1, "70")
}

func TestProcessSaleToSelf(t *testing.T) {
	env := setupPurchaseTest(t)

	if _, err := env.svc.ProcessSale(61, 61, 1); !errors.Is(err, ErrSaleToSelf) {
		t.Fatalf("expected sale to self error, got: %v", err)
	}
}
