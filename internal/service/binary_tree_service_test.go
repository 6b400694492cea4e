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

func setupBinaryTreeTest(t *testing.T) (*BinaryTreeService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:binary_tree_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.MLMProfile{},
		&models.BusinessCenter{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	svc := NewBinaryTreeService(
		repository.NewBusinessCenterRepository(db),
		repository.NewMLMProfileRepository(db),
		constants.RankOneCarat,
	)
	return svc, db
}

func TestBinaryTreePlacementLeftThenRight(t *testing.T) {
	svc, db := setupBinaryTreeTest(t)

	sponsorID := uint(41)
	sponsorProfile := createTestProfile(t, db, sponsorID, nil)
	root, err := svc.CreateRootCenter(sponsorProfile.ID)
	if err != nil {
		t.Fatalf("create root center failed: %v", err)
	}

	createTestProfile(t, db, 42, &sponsorID)
	createTestProfile(t, db, 43, &sponsorID)
	createTestProfile(t, db, 44, &sponsorID)

	left, outcome, err := svc.AutoPlaceUser(42)
	if err != nil {
		t.Fatalf("place 42 failed: %v", err)
	}
	if outcome != PlacementPlaced || *left.ParentCenterID != root.ID || left.Position != constants.BinaryPositionLeft {
		t.Fatalf("unexpected placement for 42: outcome=%s center=%+v", outcome, left)
	}

	right, outcome, err := svc.AutoPlaceUser(43)
	if err != nil {
		t.Fatalf("place 43 failed: %v", err)
	}
	if outcome != PlacementPlaced || *right.ParentCenterID != root.ID || right.Position != constants.BinaryPositionRight {
		t.Fatalf("unexpected placement for 43: outcome=%s center=%+v", outcome, right)
	}

	// 推荐人中心左右槽位都已占用：安置失败，不向更深层寻位
	third, outcome, err := svc.AutoPlaceUser(44)
	if err != nil {
		t.Fatalf("place 44 failed: %v", err)
	}
	if outcome != PlacementNoOpenSlot || third != nil {
		t.Fatalf("expected no_open_slot, got outcome=%s center=%+v", outcome, third)
	}
	var count int64
	if err := db.Model(&models.BusinessCenter{}).Count(&count).Error; err != nil {
		t.Fatalf("count centers failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 centers after failed placement, got: %d", count)
	}

	// 重复安置直接返回既有中心
	again, outcome, err := svc.AutoPlaceUser(42)
	if err != nil {
		t.Fatalf("place 42 again failed: %v", err)
	}
	if outcome != PlacementAlreadyPlaced || again.ID != left.ID {
		t.Fatalf("expected already_placed, got outcome=%s center=%+v", outcome, again)
	}
}

func TestBinaryTreePlacementMissingPrerequisites(t *testing.T) {
	svc, db := setupBinaryTreeTest(t)

	// 无档案
	_, outcome, err := svc.AutoPlaceUser(45)
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}
	if outcome != PlacementNoProfile {
		t.Fatalf("expected no_profile, got: %s", outcome)
	}

	// 推荐人尚未入树
	sponsorID := uint(46)
	createTestProfile(t, db, 46, nil)
	createTestProfile(t, db, 47, &sponsorID)
	_, outcome, err = svc.AutoPlaceUser(47)
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}
	if outcome != PlacementNoSponsorCenter {
		t.Fatalf("expected no_sponsor_center, got: %s", outcome)
	}
}

func TestBinaryTreeApplyVolumeUpdatesAncestorLegs(t *testing.T) {
	svc, db := setupBinaryTreeTest(t)

	sponsorID := uint(48)
	sponsorProfile := createTestProfile(t, db, sponsorID, nil)
	root, err := svc.CreateRootCenter(sponsorProfile.ID)
	if err != nil {
		t.Fatalf("create root center failed: %v", err)
	}
	createTestProfile(t, db, 49, &sponsorID)
	createTestProfile(t, db, 50, &sponsorID)
	if _, _, err := svc.AutoPlaceUser(49); err != nil {
		t.Fatalf("place 49 failed: %v", err)
	}
	if _, _, err := svc.AutoPlaceUser(50); err != nil {
		t.Fatalf("place 50 failed: %v", err)
	}

	if err := svc.ApplyVolume(49, models.NewMoneyFromDecimal(decimal.NewFromInt(100))); err != nil {
		t.Fatalf("apply volume failed: %v", err)
	}
	if err := svc.ApplyVolume(50, models.NewMoneyFromDecimal(decimal.NewFromInt(40))); err != nil {
		t.Fatalf("apply volume failed: %v", err)
	}

	var reloaded models.BusinessCenter
	if err := db.First(&reloaded, root.ID).Error; err != nil {
		t.Fatalf("reload root center failed: %v", err)
	}
	if !reloaded.LeftVolume.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected left volume: %s", reloaded.LeftVolume.String())
	}
	if !reloaded.RightVolume.Decimal.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected right volume: %s", reloaded.RightVolume.String())
	}
}

func TestBinaryTreeCenterLimit(t *testing.T) {
	svc, db := setupBinaryTreeTest(t)
	profile := createTestProfile(t, db, 51, nil)

	for i := 0; i < constants.MaxBusinessCenters; i++ {
		if _, err := svc.CreateRootCenter(profile.ID); err != nil {
			t.Fatalf("create center %d failed: %v", i+1, err)
		}
	}
	if _, err := svc.CreateRootCenter(profile.ID); !errors.Is(err, ErrCenterLimitReached) {
		t.Fatalf("expected center limit error, got: %v", err)
	}
}
