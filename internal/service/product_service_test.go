package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/XTeam-Pro/AIMLM/internal/models"
	"github.com/XTeam-Pro/AIMLM/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupProductServiceTest(t *testing.T) *ProductService {
	t.Helper()
	dsn := fmt.Sprintf("file:product_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewProductService(repository.NewProductRepository(db))
}

func TestProductServiceCreateRejectsDuplicateSlug(t *testing.T) {
	svc := setupProductServiceTest(t)

	input := CreateProductInput{
		Slug:        "starter-pack",
		Name:        "Starter Pack",
		PriceAmount: decimal.NewFromInt(120),
		PVValue:     decimal.NewFromInt(100),
	}
	if _, err := svc.Create(input); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err := svc.Create(input)
	if !errors.Is(err, ErrProductSlugUsed) {
		t.Fatalf("expected slug used, got: %v", err)
	}
}

func TestProductServiceCreateValidatesPrice(t *testing.T) {
	svc := setupProductServiceTest(t)

	_, err := svc.Create(CreateProductInput{
		Slug:        "free-pack",
		Name:        "Free Pack",
		PriceAmount: decimal.Zero,
		PVValue:     decimal.NewFromInt(10),
	})
	if !errors.Is(err, ErrProductPriceInvalid) {
		t.Fatalf("expected price invalid for zero price, got: %v", err)
	}

	_, err = svc.Create(CreateProductInput{
		Slug:        "negative-pv",
		Name:        "Negative PV",
		PriceAmount: decimal.NewFromInt(10),
		PVValue:     decimal.NewFromInt(-1),
	})
	if !errors.Is(err, ErrProductPriceInvalid) {
		t.Fatalf("expected price invalid for negative pv, got: %v", err)
	}
}

func TestProductServiceListPublicFiltersInactive(t *testing.T) {
	svc := setupProductServiceTest(t)

	if _, err := svc.Create(CreateProductInput{
		Slug:        "active-pack",
		Name:        "Active Pack",
		PriceAmount: decimal.NewFromInt(50),
		PVValue:     decimal.NewFromInt(40),
	}); err != nil {
		t.Fatalf("create active product failed: %v", err)
	}

	inactive := false
	if _, err := svc.Create(CreateProductInput{
		Slug:        "retired-pack",
		Name:        "Retired Pack",
		PriceAmount: decimal.NewFromInt(60),
		PVValue:     decimal.NewFromInt(50),
		IsActive:    &inactive,
	}); err != nil {
		t.Fatalf("create inactive product failed: %v", err)
	}

	items, total, err := svc.ListPublic("", 1, 20)
	if err != nil {
		t.Fatalf("list public failed: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Slug != "active-pack" {
		t.Fatalf("expected only active product, got total=%d items=%d", total, len(items))
	}

	if _, err := svc.GetPublicBySlug("retired-pack"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected not found for inactive slug, got: %v", err)
	}

	items, total, err = svc.ListAdmin("", 1, 20)
	if err != nil {
		t.Fatalf("list admin failed: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 products in admin list, got total=%d items=%d", total, len(items))
	}
}

func TestProductServiceUpdateAndDelete(t *testing.T) {
	svc := setupProductServiceTest(t)

	product, err := svc.Create(CreateProductInput{
		Slug:        "wellness-essentials",
		Name:        "Wellness Essentials",
		PriceAmount: decimal.NewFromInt(260),
		PVValue:     decimal.NewFromInt(220),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.Update(product.ID, CreateProductInput{
		Slug:        "wellness-essentials",
		Name:        "Wellness Essentials v2",
		PriceAmount: decimal.RequireFromString("275.50"),
		PVValue:     decimal.NewFromInt(230),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Wellness Essentials v2" {
		t.Fatalf("unexpected name: %s", updated.Name)
	}
	if !updated.PriceAmount.Decimal.Equal(decimal.RequireFromString("275.50")) {
		t.Fatalf("unexpected price: %s", updated.PriceAmount.String())
	}

	if err := svc.Delete(product.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected not found after delete, got: %v", err)
	}
}
