//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/XTeam-Pro/AIMLM/internal/constants"
	"github.com/XTeam-Pro/AIMLM/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.WalletTransaction{},
		&models.WalletAccount{},
		&models.Bonus{},
		&models.Product{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Bonus{},
		&models.WalletAccount{},
		&models.WalletTransaction{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresProductSearchCaseInsensitive(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewProductRepository(db)

	product := &models.Product{
		Slug:        "pg-wellness-essentials",
		Name:        "Wellness Essentials",
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(260)),
		PVValue:     models.NewMoneyFromDecimal(decimal.NewFromInt(220)),
		IsActive:    true,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	// postgres 走 ILIKE，大小写不敏感
	rows, total, err := repo.List(ProductListFilter{
		Page:     1,
		PageSize: 20,
		Search:   "WELLNESS",
	})
	if err != nil {
		t.Fatalf("product list search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("product search want 1 got total=%d len=%d", total, len(rows))
	}
}

func TestPostgresWalletReferenceUnique(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewWalletRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	first := &models.WalletTransaction{
		UserID:       1,
		Type:         constants.WalletTxnTypeSponsorBonus,
		Direction:    constants.WalletTxnDirectionIn,
		Amount:       models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		BalanceAfter: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		Currency:     constants.SiteCurrencyDefault,
		Reference:    "pg:bonus:unique:1",
		CreatedAt:    now,
	}
	if err := repo.CreateTransaction(first); err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}

	duplicate := &models.WalletTransaction{
		UserID:       1,
		Type:         constants.WalletTxnTypeSponsorBonus,
		Direction:    constants.WalletTxnDirectionIn,
		Amount:       models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		BalanceAfter: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Currency:     constants.SiteCurrencyDefault,
		Reference:    "pg:bonus:unique:1",
		CreatedAt:    now,
	}
	if err := repo.CreateTransaction(duplicate); err == nil {
		t.Fatalf("duplicate reference should be rejected by unique index")
	}

	txn, err := repo.GetTransactionByReference("pg:bonus:unique:1")
	if err != nil {
		t.Fatalf("get by reference failed: %v", err)
	}
	if txn == nil || txn.ID != first.ID {
		t.Fatalf("unexpected transaction: %+v", txn)
	}
}
