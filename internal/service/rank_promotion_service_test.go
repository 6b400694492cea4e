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

func setupRankPromotionTest(t *testing.T) (*RankPromotionService, *HierarchyService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:rank_promotion_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.MLMProfile{},
		&models.HierarchyEdge{},
		&models.UserActivity{},
		&models.UserRankHistory{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	hierarchySvc := NewHierarchyService(
		repository.NewHierarchyRepository(db),
		repository.NewMLMProfileRepository(db),
		repository.NewActivityRepository(db),
	)
	svc := NewRankPromotionService(
		repository.NewMLMProfileRepository(db),
		repository.NewRankHistoryRepository(db),
		hierarchySvc,
		constants.ActiveLinesRequired,
	)
	return svc, hierarchySvc, db
}

// buildActiveLines 为用户挂 lines 条直推线，每条线一个当期业绩达标的下级
func buildActiveLines(t *testing.T, db *gorm.DB, hierarchySvc *HierarchyService, userID uint, lines int, volume int64, at time.Time) {
	t.Helper()
	for i := 0; i < lines; i++ {
		childID := userID*100 + uint(i) + 1
		if err := hierarchySvc.CreateChainForNewUser(userID, childID); err != nil {
			t.Fatalf("create chain failed: %v", err)
		}
		childProfile := createTestProfile(t, db, childID, &userID)
		if err := db.Transaction(func(tx *gorm.DB) error {
			return hierarchySvc.RecordActivityTx(tx, childProfile.ID,
				models.NewMoneyFromDecimal(decimal.NewFromInt(volume)),
				constants.ActivityTypePersonalPurchase, at)
		}); err != nil {
			t.Fatalf("record activity failed: %v", err)
		}
	}
}

func TestRankPromotionSingleStep(t *testing.T) {
	svc, hierarchySvc, db := setupRankPromotionTest(t)
	fixedNow := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return fixedNow })

	profile := createTestProfile(t, db, 81, nil)
	// 三条线的业绩远超多级门槛，但单次评估仍只晋升一级
	buildActiveLines(t, db, hierarchySvc, 81, 3, 50000, fixedNow)

	promoted, rank, err := svc.CheckAndPromote(81)
	if err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if !promoted || rank != constants.RankOneCarat {
		t.Fatalf("expected promotion to 1 CARAT, got promoted=%v rank=%s", promoted, rank)
	}

	var history []models.UserRankHistory
	if err := db.Where("profile_id = ?", profile.ID).Find(&history).Error; err != nil {
		t.Fatalf("load history failed: %v", err)
	}
	if len(history) != 1 || history[0].Rank != constants.RankOneCarat || history[0].QualificationPeriod != "2026-03" {
		t.Fatalf("unexpected history: %+v", history)
	}

	// 下一次评估再走一步
	promoted, rank, err = svc.CheckAndPromote(81)
	if err != nil {
		t.Fatalf("second promote failed: %v", err)
	}
	if !promoted || rank != constants.RankTwoCarat {
		t.Fatalf("expected promotion to 2 CARAT, got promoted=%v rank=%s", promoted, rank)
	}
}

func TestRankPromotionInsufficientLines(t *testing.T) {
	svc, hierarchySvc, db := setupRankPromotionTest(t)
	fixedNow := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return fixedNow })

	createTestProfile(t, db, 82, nil)
	buildActiveLines(t, db, hierarchySvc, 82, 2, 50000, fixedNow)

	promoted, rank, err := svc.CheckAndPromote(82)
	if err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if promoted || rank != "" {
		t.Fatalf("expected no promotion, got promoted=%v rank=%s", promoted, rank)
	}

	var historyCount int64
	if err := db.Model(&models.UserRankHistory{}).Count(&historyCount).Error; err != nil {
		t.Fatalf("count history failed: %v", err)
	}
	if historyCount != 0 {
		t.Fatalf("expected no history rows, got %d", historyCount)
	}
}

func TestRankPromotionAtTop(t *testing.T) {
	svc, _, db := setupRankPromotionTest(t)

	profile := createTestProfile(t, db, 83, nil)
	profile.CurrentRank = constants.RankSapphire
	if err := db.Save(profile).Error; err != nil {
		t.Fatalf("update profile failed: %v", err)
	}

	promoted, rank, err := svc.CheckAndPromote(83)
	if err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if promoted || rank != constants.RankSapphire {
		t.Fatalf("expected no promotion at top, got promoted=%v rank=%s", promoted, rank)
	}
}

func TestRankPromotionNextRankTable(t *testing.T) {
	svc, _, _ := setupRankPromotionTest(t)

	if next := svc.NextRank(""); next == nil || next.Name != constants.RankOneCarat {
		t.Fatalf("unexpected first rank: %+v", next)
	}
	if next := svc.NextRank(constants.RankCrystal); next == nil || next.Name != constants.RankRubin {
		t.Fatalf("unexpected next after CRYSTAL: %+v", next)
	}
	if next := svc.NextRank(constants.RankSapphire); next != nil {
		t.Fatalf("expected nil at top, got: %+v", next)
	}
}
