package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/XTeam-Pro/AIMLM/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupProductRepositoryTest(t *testing.T) *GormProductRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:product_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate product failed: %v", err)
	}
	return NewProductRepository(db)
}

func createRepoProduct(t *testing.T, repo *GormProductRepository, slug, name string, active bool) *models.Product {
	t.Helper()
	product := &models.Product{
		Slug:        slug,
		Name:        name,
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		PVValue:     models.NewMoneyFromDecimal(decimal.NewFromInt(80)),
		IsActive:    active,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if !active {
		product.IsActive = false
		if err := repo.Update(product); err != nil {
			t.Fatalf("update inactive product failed: %v", err)
		}
	}
	return product
}

func TestProductRepositoryListSearchAndActive(t *testing.T) {
	repo := setupProductRepositoryTest(t)
	createRepoProduct(t, repo, "starter-pack", "Starter Pack", true)
	createRepoProduct(t, repo, "wellness-essentials", "Wellness Essentials", true)
	createRepoProduct(t, repo, "legacy-bundle", "Legacy Bundle", false)

	rows, total, err := repo.List(ProductListFilter{Page: 1, PageSize: 20, OnlyActive: true})
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("active list want 2 got total=%d rows=%d", total, len(rows))
	}

	rows, total, err = repo.List(ProductListFilter{Page: 1, PageSize: 20, Search: "wellness"})
	if err != nil {
		t.Fatalf("list by search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].Slug != "wellness-essentials" {
		t.Fatalf("unexpected search result: total=%d rows=%+v", total, rows)
	}

	_, total, err = repo.List(ProductListFilter{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("full list want 3 got %d", total)
	}
}

func TestProductRepositoryGetBySlug(t *testing.T) {
	repo := setupProductRepositoryTest(t)
	createRepoProduct(t, repo, "starter-pack", "Starter Pack", true)
	createRepoProduct(t, repo, "legacy-bundle", "Legacy Bundle", false)

	product, err := repo.GetBySlug("starter-pack", true)
	if err != nil {
		t.Fatalf("get by slug failed: %v", err)
	}
	if product == nil || product.Name != "Starter Pack" {
		t.Fatalf("unexpected product: %+v", product)
	}

	product, err = repo.GetBySlug("legacy-bundle", true)
	if err != nil {
		t.Fatalf("get inactive by slug failed: %v", err)
	}
	if product != nil {
		t.Fatalf("only-active lookup should skip inactive product, got %+v", product)
	}

	product, err = repo.GetBySlug("legacy-bundle", false)
	if err != nil {
		t.Fatalf("get inactive without filter failed: %v", err)
	}
	if product == nil {
		t.Fatalf("expected inactive product without filter")
	}
}

func TestProductRepositoryCountBySlug(t *testing.T) {
	repo := setupProductRepositoryTest(t)
	product := createRepoProduct(t, repo, "starter-pack", "Starter Pack", true)

	count, err := repo.CountBySlug("starter-pack", nil)
	if err != nil {
		t.Fatalf("count by slug failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("count want 1 got %d", count)
	}

	count, err = repo.CountBySlug("starter-pack", &product.ID)
	if err != nil {
		t.Fatalf("count excluding self failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("count excluding self want 0 got %d", count)
	}
}
