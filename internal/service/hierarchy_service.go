package service

import (
	"time"

	"github.com/XTeam-Pro/AIMLM/internal/logger"
	"github.com/XTeam-Pro/AIMLM/internal/models"
	"github.com/XTeam-Pro/AIMLM/internal/repository"

	"gorm.io/gorm"
)

// HierarchyService 推荐层级服务
//
// 闭包表维护：新用户入网时，除直推边外，推荐人的每个上级
// 都追加一条到新用户的边，level 逐级加一。
type HierarchyService struct {
	hierarchyRepo repository.HierarchyRepository
	profileRepo   repository.MLMProfileRepository
	activityRepo  repository.ActivityRepository
	now           func() time.Time
}

// NewHierarchyService 创建推荐层级服务
func NewHierarchyService(
	hierarchyRepo repository.HierarchyRepository,
	profileRepo repository.MLMProfileRepository,
	activityRepo repository.ActivityRepository,
) *HierarchyService {
	return &HierarchyService{
		hierarchyRepo: hierarchyRepo,
		profileRepo:   profileRepo,
		activityRepo:  activityRepo,
		now:           time.Now,
	}
}

// SetClock 注入时钟（测试用）
func (s *HierarchyService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateChainForNewUser 为新用户建立完整的推荐层级链
func (s *HierarchyService) CreateChainForNewUser(sponsorID, newUserID uint) error {
	return s.hierarchyRepo.Transaction(func(tx *gorm.DB) error {
		return s.CreateChainForNewUserTx(tx, sponsorID, newUserID)
	})
}

// CreateChainForNewUserTx 在事务内为新用户建立推荐层级链
func (s *HierarchyService) CreateChainForNewUserTx(tx *gorm.DB, sponsorID, newUserID uint) error {
	if newUserID == 0 {
		return ErrUserNotFound
	}
	if sponsorID == 0 {
		// 无推荐人的根用户不产生任何边
		return nil
	}
	if sponsorID == newUserID {
		return ErrHierarchySelfSponsor
	}

	repo := s.hierarchyRepo.WithTx(tx)
	now := s.now()

	ancestors, err := repo.ListAncestors(sponsorID)
	if err != nil {
		return err
	}

	edges := make([]models.HierarchyEdge, 0, len(ancestors)+1)
	edges = append(edges, models.HierarchyEdge{
		AncestorID:   sponsorID,
		DescendantID: newUserID,
		Level:        1,
		CreatedAt:    now,
	})
	for _, edge := range ancestors {
		edges = append(edges, models.HierarchyEdge{
			AncestorID:   edge.AncestorID,
			DescendantID: newUserID,
			Level:        edge.Level + 1,
			CreatedAt:    now,
		})
	}
	if err := repo.CreateEdges(edges); err != nil {
		return err
	}

	logger.Infow("mlm_hierarchy_chain_created",
		"sponsor_id", sponsorID,
		"new_user_id", newUserID,
		"edge_count", len(edges),
	)
	return nil
}

// Ancestors 获取某用户的全部上级边（按代数升序）
func (s *HierarchyService) Ancestors(userID uint) ([]models.HierarchyEdge, error) {
	return s.hierarchyRepo.ListAncestors(userID)
}

// Descendants 获取某用户的全部下级边
func (s *HierarchyService) Descendants(userID uint) ([]models.HierarchyEdge, error) {
	return s.hierarchyRepo.ListDescendants(userID)
}

// DirectDescendants 获取某用户的直推下级边
func (s *HierarchyService) DirectDescendants(userID uint) ([]models.HierarchyEdge, error) {
	return s.hierarchyRepo.ListDirectDescendants(userID)
}

// DeleteChainsForUser 删除某用户参与的全部层级边（账号注销时级联清理）
func (s *HierarchyService) DeleteChainsForUser(userID uint) error {
	return s.hierarchyRepo.DeleteByUser(userID)
}

// CountActiveLines 统计指定周期内的活跃直推线数量。
//
// 每个直推下级连同其整棵子树构成一条线；线内任意一人
// 在周期内个人业绩达到阈值，该线即记为活跃，只计一次。
func (s *HierarchyService) CountActiveLines(userID uint, threshold models.Money, periodStart time.Time) (int, error) {
	if userID == 0 {
		return 0, ErrUserNotFound
	}
	direct, err := s.hierarchyRepo.ListDirectDescendants(userID)
	if err != nil {
		return 0, err
	}
	if len(direct) == 0 {
		return 0, nil
	}

	active := 0
	for _, edge := range direct {
		lineUserIDs := []uint{edge.DescendantID}
		sub, err := s.hierarchyRepo.ListDescendants(edge.DescendantID)
		if err != nil {
			return 0, err
		}
		for _, subEdge := range sub {
			lineUserIDs = append(lineUserIDs, subEdge.DescendantID)
		}

		ok, err := s.lineHasActiveMember(lineUserIDs, threshold, periodStart)
		if err != nil {
			return 0, err
		}
		if ok {
			active++
		}
	}
	return active, nil
}

// RecordActivityTx 在事务内累计档案当期活跃度（按周期起点 upsert）
func (s *HierarchyService) RecordActivityTx(tx *gorm.DB, profileID uint, pv models.Money, activityType string, at time.Time) error {
	if profileID == 0 {
		return ErrProfileNotFound
	}
	start, end := periodBounds(at)
	repo := s.activityRepo.WithTx(tx)

	activity, err := repo.GetByProfileAndPeriod(profileID, start)
	if err != nil {
		return err
	}
	if activity == nil {
		return repo.Create(&models.UserActivity{
			ProfileID:      profileID,
			PeriodStart:    start,
			PeriodEnd:      end,
			PersonalVolume: pv,
			ActivityType:   activityType,
			CreatedAt:      at,
			UpdatedAt:      at,
		})
	}
	activity.PersonalVolume = models.NewMoneyFromDecimal(activity.PersonalVolume.Decimal.Add(pv.Decimal))
	activity.ActivityType = activityType
	activity.UpdatedAt = at
	return repo.Update(activity)
}

func (s *HierarchyService) lineHasActiveMember(userIDs []uint, threshold models.Money, periodStart time.Time) (bool, error) {
	profiles, err := s.profileRepo.ListByUserIDs(userIDs)
	if err != nil {
		return false, err
	}
	if len(profiles) == 0 {
		return false, nil
	}
	profileIDs := make([]uint, 0, len(profiles))
	for _, p := range profiles {
		profileIDs = append(profileIDs, p.ID)
	}
	activeIDs, err := s.activityRepo.ListActiveProfileIDs(profileIDs, threshold, periodStart)
	if err != nil {
		return false, err
	}
	return len(activeIDs) > 0, nil
}
