package service

import (
	"time"

	"github.com/XTeam-Pro/AIMLM/internal/constants"
	"github.com/XTeam-Pro/AIMLM/internal/logger"
	"github.com/XTeam-Pro/AIMLM/internal/models"
	"github.com/XTeam-Pro/AIMLM/internal/repository"

	"github.com/shopspring/decimal"
)

// rankRequirement 等级要求：活跃线判定用的业绩门槛
type rankRequirement struct {
	Name   string
	Volume decimal.Decimal
}

// rankTable 等级表（按晋升顺序）
var rankTable = []rankRequirement{
	{Name: constants.RankOneCarat, Volume: decimal.NewFromInt(500)},
	{Name: constants.RankTwoCarat, Volume: decimal.NewFromInt(1000)},
	{Name: constants.RankThreeCarat, Volume: decimal.NewFromInt(2000)},
	{Name: constants.RankCrystal, Volume: decimal.NewFromInt(4000)},
	{Name: constants.RankRubin, Volume: decimal.NewFromInt(6000)},
	{Name: constants.RankSapphire, Volume: decimal.NewFromInt(10000)},
}

// RankPromotionService 等级晋升服务
//
// 单次调用最多晋升一级：即使业绩同时满足多级要求，
// 也只走一步，下一周期重新评估。
type RankPromotionService struct {
	profileRepo     repository.MLMProfileRepository
	rankHistoryRepo repository.RankHistoryRepository
	hierarchySvc    *HierarchyService
	requiredLines   int
	now             func() time.Time
}

// NewRankPromotionService 创建等级晋升服务
func NewRankPromotionService(
	profileRepo repository.MLMProfileRepository,
	rankHistoryRepo repository.RankHistoryRepository,
	hierarchySvc *HierarchyService,
	requiredLines int,
) *RankPromotionService {
	if requiredLines <= 0 {
		requiredLines = constants.ActiveLinesRequired
	}
	return &RankPromotionService{
		profileRepo:     profileRepo,
		rankHistoryRepo: rankHistoryRepo,
		hierarchySvc:    hierarchySvc,
		requiredLines:   requiredLines,
		now:             time.Now,
	}
}

// SetClock 注入时钟（测试用）
func (s *RankPromotionService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// NextRank 返回当前等级的下一级要求；已到顶时返回 nil
func (s *RankPromotionService) NextRank(currentRank string) *rankRequirement {
	if currentRank == "" {
		next := rankTable[0]
		return &next
	}
	for i, entry := range rankTable {
		if entry.Name == currentRank {
			if i+1 >= len(rankTable) {
				return nil
			}
			next := rankTable[i+1]
			return &next
		}
	}
	return nil
}

// CheckAndPromote 评估并执行单步晋升，返回是否晋升与晋升后的等级
func (s *RankPromotionService) CheckAndPromote(userID uint) (bool, string, error) {
	if userID == 0 {
		return false, "", ErrUserNotFound
	}
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return false, "", err
	}
	if profile == nil {
		return false, "", ErrProfileNotFound
	}

	next := s.NextRank(profile.CurrentRank)
	if next == nil {
		return false, profile.CurrentRank, nil
	}

	now := s.now()
	periodStart, _ := periodBounds(now)
	activeLines, err := s.hierarchySvc.CountActiveLines(userID, models.NewMoneyFromDecimal(next.Volume), periodStart)
	if err != nil {
		return false, "", err
	}
	if activeLines < s.requiredLines {
		return false, profile.CurrentRank, nil
	}

	previous := profile.CurrentRank
	profile.CurrentRank = next.Name
	profile.UpdatedAt = now
	if err := s.profileRepo.Update(profile); err != nil {
		return false, "", err
	}

	history := &models.UserRankHistory{
		ProfileID:           profile.ID,
		Rank:                next.Name,
		Club:                profile.CurrentClub,
		QualificationPeriod: periodKey(now),
		PersonalVolume:      profile.PersonalVolume,
		GroupVolume:         profile.GroupVolume,
		AchievedAt:          now,
		CreatedAt:           now,
	}
	if err := s.rankHistoryRepo.Create(history); err != nil {
		return false, "", err
	}

	logger.Infow("mlm_rank_promoted",
		"user_id", userID,
		"previous_rank", previous,
		"new_rank", next.Name,
		"active_lines", activeLines,
		"period", periodKey(now),
	)
	return true, next.Name, nil
}

// RankHistory 查询晋升历史
func (s *RankPromotionService) RankHistory(profileID uint, page, pageSize int) ([]models.UserRankHistory, int64, error) {
	return s.rankHistoryRepo.List(repository.RankHistoryListFilter{
		ProfileID: profileID,
		Page:      page,
		PageSize:  pageSize,
	})
}
