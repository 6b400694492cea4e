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

func setupSponsorBonusTest(t *testing.T) (*SponsorBonusService, *WalletService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:sponsor_bonus_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.MLMProfile{},
		&models.Transaction{},
		&models.Bonus{},
		&models.WalletAccount{},
		&models.WalletTransaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	walletSvc := NewWalletService(repository.NewWalletRepository(db), repository.NewUserRepository(db), testCompanyEmail)
	svc := NewSponsorBonusService(
		repository.NewBonusRepository(db),
		repository.NewMLMProfileRepository(db),
		repository.NewTransactionRepository(db),
		walletSvc,
		5,
	)
	return svc, walletSvc, db
}

func createTestProfile(t *testing.T, db *gorm.DB, userID uint, sponsorID *uint) *models.MLMProfile {
	t.Helper()
	profile := models.MLMProfile{
		UserID:       userID,
		ContractType: constants.ContractTypeDistributor,
		SponsorID:    sponsorID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("create profile failed: %v", err)
	}
	return &profile
}

func createCompletedPurchase(t *testing.T, db *gorm.DB, buyerID uint, pv int64) {
	t.Helper()
	txn := models.Transaction{
		BuyerID:    buyerID,
		CashAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(pv)),
		PVAmount:   models.NewMoneyFromDecimal(decimal.NewFromInt(pv)),
		Type:       constants.TransactionTypePurchase,
		Status:     constants.TransactionStatusCompleted,
		CreatedAt:  time.Now(),
	}
	if err := db.Create(&txn).Error; err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}
}

func TestSponsorBonusDistributeOncePerPair(t *testing.T) {
	svc, walletSvc, db := setupSponsorBonusTest(t)
	createCompanyUser(t, walletSvc, db, 1, decimal.NewFromInt(1000))
	createTestUser(t, db, 11)
	createTestUser(t, db, 12)
	sponsorID := uint(11)
	createTestProfile(t, db, 11, nil)
	createTestProfile(t, db, 12, &sponsorID)
	createCompletedPurchase(t, db, 12, 100)

	result, err := svc.Distribute(12)
	if err != nil {
		t.Fatalf("distribute failed: %v", err)
	}
	if result.Outcome != SponsorBonusPaid {
		t.Fatalf("unexpected outcome: %s", result.Outcome)
	}
	if result.SponsorID != 11 || !result.Amount.Decimal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected result: %+v", result)
	}

	account, err := walletSvc.GetAccount(11)
	if err != nil {
		t.Fatalf("get sponsor account failed: %v", err)
	}
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected sponsor balance: %s", account.Balance.String())
	}

	// 再次触发：同一 (推荐人, 新人) 不得重复发放
	result, err = svc.Distribute(12)
	if err != nil {
		t.Fatalf("second distribute failed: %v", err)
	}
	if result.Outcome != SponsorBonusAlreadyPaid {
		t.Fatalf("expected already_paid, got: %s", result.Outcome)
	}

	account, err = walletSvc.GetAccount(11)
	if err != nil {
		t.Fatalf("get sponsor account failed: %v", err)
	}
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("sponsor credited twice, balance: %s", account.Balance.String())
	}

	var bonusCount int64
	if err := db.Model(&models.Bonus{}).
		Where("user_id = ? AND bonus_type = ?", 11, constants.BonusTypeSponsor).
		Count(&bonusCount).Error; err != nil {
		t.Fatalf("count bonuses failed: %v", err)
	}
	if bonusCount != 1 {
		t.Fatalf("expected 1 bonus row, got %d", bonusCount)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{gorm.ErrDuplicatedKey, true},
		{fmt.Errorf("create bonus: %w", gorm.ErrDuplicatedKey), true},
		{errors.New("UNIQUE constraint failed: bonus.reference"), true},
		{errors.New("ERROR: duplicate key value violates unique constraint"), true},
		{errors.New("connection reset by peer"), false},
	}
	for _, c := range cases {
		if got := isUniqueViolation(c.err); got != c.want {
			t.Fatalf("isUniqueViolation(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestSponsorBonusNoSponsor(t *testing.T) {
	svc, _, db := setupSponsorBonusTest(t)
	createTestUser(t, db, 13)
	createTestProfile(t, db, 13, nil)
	createCompletedPurchase(t, db, 13, 100)

	result, err := svc.Distribute(13)
	if err != nil {
		t.Fatalf("distribute failed: %v", err)
	}
	if result.Outcome != SponsorBonusNoSponsor {
		t.Fatalf("expected no_sponsor, got: %s", result.Outcome)
	}
}

func TestSponsorBonusNoPurchases(t *testing.T) {
	svc, _, db := setupSponsorBonusTest(t)
	createTestUser(t, db, 14)
	createTestUser(t, db, 15)
	sponsorID := uint(14)
	createTestProfile(t, db, 14, nil)
	createTestProfile(t, db, 15, &sponsorID)

	result, err := svc.Distribute(15)
	if err != nil {
		t.Fatalf("distribute failed: %v", err)
	}
	if result.Outcome != SponsorBonusNoPurchases {
		t.Fatalf("expected no_purchases, got: %s", result.Outcome)
	}

	var bonusCount int64
	if err := db.Model(&models.Bonus{}).Count(&bonusCount).Error; err != nil {
		t.Fatalf("count bonuses failed: %v", err)
	}
	if bonusCount != 0 {
		t.Fatalf("expected no bonus rows, got %d", bonusCount)
	}
}

func TestSponsorBonusZeroVolume(t *testing.T) {
	svc, _, db := setupSponsorBonusTest(t)
	createTestUser(t, db, 16)
	createTestUser(t, db, 17)
	sponsorID := uint(16)
	createTestProfile(t, db, 16, nil)
	createTestProfile(t, db, 17, &sponsorID)
	createCompletedPurchase(t, db, 17, 0)

	result, err := svc.Distribute(17)
	if err != nil {
		t.Fatalf("distribute failed: %v", err)
	}
	if result.Outcome != SponsorBonusZero {
		t.Fatalf("expected zero_bonus, got: %s", result.Outcome)
	}
}
