package service

import (
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

func setupGenerationBonusTest(t *testing.T) (*GenerationBonusService, *WalletService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:generation_bonus_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.MLMProfile{},
		&models.HierarchyEdge{},
		&models.Bonus{},
		&models.GenerationBonusMatrix{},
		&models.WalletAccount{},
		&models.WalletTransaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	walletSvc := NewWalletService(repository.NewWalletRepository(db), repository.NewUserRepository(db), testCompanyEmail)
	svc := NewGenerationBonusService(
		repository.NewBonusRepository(db),
		repository.NewHierarchyRepository(db),
		repository.NewMLMProfileRepository(db),
		repository.NewGenerationMatrixRepository(db),
		walletSvc,
		constants.GenerationMaxDepth,
	)
	return svc, walletSvc, db
}

func createHierarchyEdge(t *testing.T, db *gorm.DB, ancestorID, descendantID uint, level int) {
	t.Helper()
	edge := models.HierarchyEdge{
		AncestorID:   ancestorID,
		DescendantID: descendantID,
		Level:        level,
		CreatedAt:    time.Now(),
	}
	if err := db.Create(&edge).Error; err != nil {
		t.Fatalf("create hierarchy edge failed: %v", err)
	}
}

func createMatrixEntry(t *testing.T, db *gorm.DB, rank string, generation int, percent int64) {
	t.Helper()
	entry := models.GenerationBonusMatrix{
		Rank:            rank,
		Generation:      generation,
		BonusPercentage: models.NewMoneyFromDecimal(decimal.NewFromInt(percent)),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("create matrix entry failed: %v", err)
	}
}

func createPaidBinaryBonus(t *testing.T, db *gorm.DB, userID uint, amount int64, period, reference string) *models.Bonus {
	t.Helper()
	now := time.Now()
	bonus := models.Bonus{
		UserID:            userID,
		BonusType:         constants.BonusTypeBinary,
		Amount:            models.NewMoneyFromDecimal(decimal.NewFromInt(amount)),
		Currency:          constants.SiteCurrencyDefault,
		CalculationPeriod: period,
		Reference:         reference,
		IsPaid:            true,
		PaidAt:            &now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := db.Create(&bonus).Error; err != nil {
		t.Fatalf("create binary bonus failed: %v", err)
	}
	return &bonus
}

func createRankedProfile(t *testing.T, db *gorm.DB, userID uint, rank string) *models.MLMProfile {
	t.Helper()
	profile := createTestProfile(t, db, userID, nil)
	profile.CurrentRank = rank
	if err := db.Save(profile).Error; err != nil {
		t.Fatalf("update profile rank failed: %v", err)
	}
	return profile
}

func TestGenerationBonusBatchDepthCutoff(t *testing.T) {
	svc, walletSvc, db := setupGenerationBonusTest(t)
	fixedNow := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return fixedNow })

	createCompanyUser(t, walletSvc, db, 1, decimal.NewFromInt(1000))
	createTestUser(t, db, 30)
	createTestUser(t, db, 31)
	createTestUser(t, db, 32)
	createTestUser(t, db, 33)

	// 第 1、7 代在发放范围内，第 8 代即使矩阵有配置也不发放
	createRankedProfile(t, db, 31, constants.RankSapphire)
	createRankedProfile(t, db, 32, constants.RankSapphire)
	createRankedProfile(t, db, 33, constants.RankSapphire)
	createHierarchyEdge(t, db, 31, 30, 1)
	createHierarchyEdge(t, db, 32, 30, 7)
	createHierarchyEdge(t, db, 33, 30, 8)
	createMatrixEntry(t, db, constants.RankSapphire, 1, 5)
	createMatrixEntry(t, db, constants.RankSapphire, 7, 1)
	createMatrixEntry(t, db, constants.RankSapphire, 8, 1)

	source := createPaidBinaryBonus(t, db, 30, 100, "2026-03", "binary:900:2026-03")

	result, err := svc.CalculateAndApply("")
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if result.Period != "2026-03" {
		t.Fatalf("unexpected period: %s", result.Period)
	}
	if result.SourceCount != 1 || result.PaidCount != 2 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if !result.TotalAmount.Decimal.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("unexpected total: %s", result.TotalAmount.String())
	}

	balances := map[uint]int64{31: 5, 32: 1, 33: 0}
	for userID, expected := range balances {
		account, err := walletSvc.GetAccount(userID)
		if err != nil {
			t.Fatalf("get account %d failed: %v", userID, err)
		}
		if !account.Balance.Decimal.Equal(decimal.NewFromInt(expected)) {
			t.Fatalf("unexpected balance for %d: %s", userID, account.Balance.String())
		}
	}

	var bonus models.Bonus
	reference := fmt.Sprintf("generation:%d:31", source.ID)
	if err := db.Where("reference = ?", reference).First(&bonus).Error; err != nil {
		t.Fatalf("generation bonus row missing: %v", err)
	}
	if bonus.BonusType != constants.BonusTypeGeneration || !bonus.IsPaid {
		t.Fatalf("unexpected bonus row: %+v", bonus)
	}
}

func TestGenerationBonusBatchRerunIdempotent(t *testing.T) {
	svc, walletSvc, db := setupGenerationBonusTest(t)
	fixedNow := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return fixedNow })

	createCompanyUser(t, walletSvc, db, 1, decimal.NewFromInt(1000))
	createTestUser(t, db, 34)
	createTestUser(t, db, 35)
	createRankedProfile(t, db, 35, constants.RankSapphire)
	createHierarchyEdge(t, db, 35, 34, 1)
	createMatrixEntry(t, db, constants.RankSapphire, 1, 5)
	createPaidBinaryBonus(t, db, 34, 200, "2026-03", "binary:901:2026-03")

	first, err := svc.CalculateAndApply("2026-03")
	if err != nil {
		t.Fatalf("first batch failed: %v", err)
	}
	if first.PaidCount != 1 || !first.TotalAmount.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected first batch: %+v", first)
	}

	second, err := svc.CalculateAndApply("2026-03")
	if err != nil {
		t.Fatalf("second batch failed: %v", err)
	}
	if second.PaidCount != 0 {
		t.Fatalf("rerun paid again: %+v", second)
	}

	account, err := walletSvc.GetAccount(35)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("balance changed on rerun: %s", account.Balance.String())
	}
}

func TestGenerationBonusSkipsRankWithoutMatrixEntry(t *testing.T) {
	svc, walletSvc, db := setupGenerationBonusTest(t)
	fixedNow := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return fixedNow })

	createCompanyUser(t, walletSvc, db, 1, decimal.NewFromInt(1000))
	createTestUser(t, db, 36)
	createTestUser(t, db, 37)
	// 上级等级在矩阵中没有任何配置
	createRankedProfile(t, db, 37, constants.RankOneCarat)
	createHierarchyEdge(t, db, 37, 36, 1)
	createMatrixEntry(t, db, constants.RankSapphire, 1, 5)
	createPaidBinaryBonus(t, db, 36, 100, "2026-03", "binary:902:2026-03")

	result, err := svc.CalculateAndApply("2026-03")
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if result.PaidCount != 0 {
		t.Fatalf("expected no payout, got: %+v", result)
	}
}
