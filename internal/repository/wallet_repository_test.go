package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/XTeam-Pro/AIMLM/internal/constants"
	"github.com/XTeam-Pro/AIMLM/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupWalletRepositoryTest(t *testing.T) (*GormWalletRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:wallet_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.WalletAccount{},
		&models.WalletTransaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewWalletRepository(db), db
}

func createWalletTxn(t *testing.T, db *gorm.DB, userID uint, txnType, direction, reference string, amount decimal.Decimal, createdAt time.Time) {
	t.Helper()
	txn := models.WalletTransaction{
		UserID:       userID,
		Type:         txnType,
		Direction:    direction,
		Amount:       models.NewMoneyFromDecimal(amount),
		BalanceAfter: models.NewMoneyFromDecimal(amount),
		Currency:     constants.SiteCurrencyDefault,
		Reference:    reference,
		CreatedAt:    createdAt,
	}
	if err := db.Create(&txn).Error; err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}
}

func TestWalletRepositoryAccountNilOnMissing(t *testing.T) {
	repo, _ := setupWalletRepositoryTest(t)

	account, err := repo.GetAccountByUserID(999)
	if err != nil {
		t.Fatalf("get missing account failed: %v", err)
	}
	if account != nil {
		t.Fatalf("expected nil for missing account, got %+v", account)
	}

	created := &models.WalletAccount{
		UserID:   7,
		Balance:  models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		Currency: constants.SiteCurrencyDefault,
	}
	if err := repo.CreateAccount(created); err != nil {
		t.Fatalf("create account failed: %v", err)
	}

	account, err = repo.GetAccountByUserID(7)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	if account == nil || !account.Balance.Decimal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected account: %+v", account)
	}
}

func TestWalletRepositoryTransactionReference(t *testing.T) {
	repo, db := setupWalletRepositoryTest(t)
	now := time.Now()
	createWalletTxn(t, db, 7, constants.WalletTxnTypeSponsorBonus, constants.WalletTxnDirectionIn, "bonus:sponsor:7:1:in", decimal.NewFromInt(5), now)

	txn, err := repo.GetTransactionByReference("bonus:sponsor:7:1:in")
	if err != nil {
		t.Fatalf("get by reference failed: %v", err)
	}
	if txn == nil || txn.UserID != 7 {
		t.Fatalf("unexpected transaction: %+v", txn)
	}

	txn, err = repo.GetTransactionByReference("missing")
	if err != nil {
		t.Fatalf("get missing reference failed: %v", err)
	}
	if txn != nil {
		t.Fatalf("expected nil for missing reference, got %+v", txn)
	}

	txn, err = repo.GetTransactionByReference("  ")
	if err != nil || txn != nil {
		t.Fatalf("blank reference should be nil/nil, got %+v %v", txn, err)
	}
}

func TestWalletRepositoryListTransactionsFilters(t *testing.T) {
	repo, db := setupWalletRepositoryTest(t)
	now := time.Now().UTC().Truncate(time.Second)

	createWalletTxn(t, db, 10, constants.WalletTxnTypePurchaseDebit, constants.WalletTxnDirectionOut, "purchase:10:1", decimal.NewFromInt(100), now.Add(-2*time.Hour))
	createWalletTxn(t, db, 10, constants.WalletTxnTypeSponsorBonus, constants.WalletTxnDirectionIn, "bonus:sponsor:10:1:in", decimal.NewFromInt(5), now.Add(-time.Hour))
	createWalletTxn(t, db, 11, constants.WalletTxnTypeSponsorBonus, constants.WalletTxnDirectionIn, "bonus:sponsor:11:1:in", decimal.NewFromInt(8), now)

	rows, total, err := repo.ListTransactions(WalletTransactionListFilter{
		Page:     1,
		PageSize: 20,
		UserID:   10,
	})
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("list by user want 2 got total=%d rows=%d", total, len(rows))
	}

	rows, total, err = repo.ListTransactions(WalletTransactionListFilter{
		Page:      1,
		PageSize:  20,
		UserID:    10,
		Type:      constants.WalletTxnTypeSponsorBonus,
		Direction: constants.WalletTxnDirectionIn,
	})
	if err != nil {
		t.Fatalf("list by type failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Reference != "bonus:sponsor:10:1:in" {
		t.Fatalf("unexpected filtered rows: total=%d rows=%+v", total, rows)
	}

	from := now.Add(-90 * time.Minute)
	rows, total, err = repo.ListTransactions(WalletTransactionListFilter{
		Page:        1,
		PageSize:    20,
		CreatedFrom: &from,
	})
	if err != nil {
		t.Fatalf("list by created range failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("list by created range want 2 got %d", total)
	}
}
