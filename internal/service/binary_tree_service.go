package service

import (
	"time"

	"github.com/XTeam-Pro/AIMLM/internal/constants"
	"github.com/XTeam-Pro/AIMLM/internal/logger"
	"github.com/XTeam-Pro/AIMLM/internal/models"
	"github.com/XTeam-Pro/AIMLM/internal/repository"

	"gorm.io/gorm"
)

// PlacementOutcome 双轨树安置结果
type PlacementOutcome string

// 安置结果常量
const (
	PlacementPlaced          PlacementOutcome = "placed"
	PlacementAlreadyPlaced   PlacementOutcome = "already_placed"
	PlacementNoProfile       PlacementOutcome = "no_profile"
	PlacementNoSponsorCenter PlacementOutcome = "no_sponsor_center"
	PlacementNoOpenSlot      PlacementOutcome = "no_open_slot"
)

// BinaryTreeService 双轨树服务
//
// 安置规则：只检查推荐人一号业务中心的左右两个直属槽位，
// 先左后右；两侧都被占用时本次安置失败，不向更深层寻位。
type BinaryTreeService struct {
	centerRepo    repository.BusinessCenterRepository
	profileRepo   repository.MLMProfileRepository
	placementRank string
	now           func() time.Time
}

// NewBinaryTreeService 创建双轨树服务
func NewBinaryTreeService(
	centerRepo repository.BusinessCenterRepository,
	profileRepo repository.MLMProfileRepository,
	placementRank string,
) *BinaryTreeService {
	if placementRank == "" {
		placementRank = constants.RankOneCarat
	}
	return &BinaryTreeService{
		centerRepo:    centerRepo,
		profileRepo:   profileRepo,
		placementRank: placementRank,
		now:           time.Now,
	}
}

// SetClock 注入时钟（测试用）
func (s *BinaryTreeService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateRootCenter 为档案创建无父节点的一号业务中心（公司根节点或树根用）
func (s *BinaryTreeService) CreateRootCenter(profileID uint) (*models.BusinessCenter, error) {
	if profileID == 0 {
		return nil, ErrProfileNotFound
	}
	count, err := s.centerRepo.CountByProfileID(profileID)
	if err != nil {
		return nil, err
	}
	if count >= constants.MaxBusinessCenters {
		return nil, ErrCenterLimitReached
	}
	now := s.now()
	center := &models.BusinessCenter{
		ProfileID:    profileID,
		CenterNumber: int(count) + 1,
		LeftVolume:   models.ZeroMoney(),
		RightVolume:  models.ZeroMoney(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.centerRepo.Create(center); err != nil {
		return nil, err
	}
	return center, nil
}

// AutoPlaceUser 自动安置用户到双轨树
//
// 返回安置到的业务中心与结果；无法安置不是错误，
// 由结果值区分原因。
func (s *BinaryTreeService) AutoPlaceUser(userID uint) (*models.BusinessCenter, PlacementOutcome, error) {
	if userID == 0 {
		return nil, PlacementNoProfile, nil
	}
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return nil, "", err
	}
	if profile == nil {
		return nil, PlacementNoProfile, nil
	}

	existing, err := s.centerRepo.GetFirstByProfileID(profile.ID)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return existing, PlacementAlreadyPlaced, nil
	}

	sponsorCenter, err := s.sponsorCenter(profile)
	if err != nil {
		return nil, "", err
	}
	if sponsorCenter == nil {
		return nil, PlacementNoSponsorCenter, nil
	}

	var placed *models.BusinessCenter
	err = s.centerRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.centerRepo.WithTx(tx)
		parent, position, err := s.openSlot(repo, sponsorCenter.ID)
		if err != nil {
			return err
		}
		if parent == nil {
			return nil
		}
		now := s.now()
		center := &models.BusinessCenter{
			ProfileID:      profile.ID,
			CenterNumber:   1,
			ParentCenterID: &parent.ID,
			Position:       position,
			LeftVolume:     models.ZeroMoney(),
			RightVolume:    models.ZeroMoney(),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := repo.Create(center); err != nil {
			return err
		}
		placed = center
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	if placed == nil {
		logger.Infow("mlm_binary_no_open_slot",
			"user_id", userID,
			"sponsor_center_id", sponsorCenter.ID,
		)
		return nil, PlacementNoOpenSlot, nil
	}

	logger.Infow("mlm_binary_user_placed",
		"user_id", userID,
		"profile_id", profile.ID,
		"parent_center_id", *placed.ParentCenterID,
		"position", placed.Position,
	)
	return placed, PlacementPlaced, nil
}

// RunPlacementCron 批量安置达到入树等级且尚未拥有业务中心的档案
func (s *BinaryTreeService) RunPlacementCron() (int, error) {
	profiles, err := s.profileRepo.ListByRankWithoutCenter(s.placementRank)
	if err != nil {
		return 0, err
	}
	placed := 0
	for _, profile := range profiles {
		_, outcome, err := s.AutoPlaceUser(profile.UserID)
		if err != nil {
			logger.Warnw("mlm_placement_cron_user_failed",
				"user_id", profile.UserID,
				"error", err,
			)
			continue
		}
		if outcome == PlacementPlaced {
			placed++
		}
	}
	logger.Infow("mlm_placement_cron_done",
		"candidates", len(profiles),
		"placed", placed,
	)
	return placed, nil
}

// ApplyVolumeTx 在事务内将 PV 沿父链向上累计到对应侧业绩
func (s *BinaryTreeService) ApplyVolumeTx(tx *gorm.DB, userID uint, pv models.Money) error {
	if pv.Decimal.IsZero() {
		return nil
	}
	profile, err := s.profileRepo.WithTx(tx).GetByUserID(userID)
	if err != nil {
		return err
	}
	if profile == nil {
		return nil
	}
	repo := s.centerRepo.WithTx(tx)
	center, err := repo.GetFirstByProfileID(profile.ID)
	if err != nil {
		return err
	}

	// 未入树的用户不产生双轨业绩
	for center != nil && center.ParentCenterID != nil {
		parent, err := repo.GetByIDForUpdate(*center.ParentCenterID)
		if err != nil {
			return err
		}
		if parent == nil {
			return nil
		}
		switch center.Position {
		case constants.BinaryPositionLeft:
			parent.LeftVolume = models.NewMoneyFromDecimal(parent.LeftVolume.Decimal.Add(pv.Decimal))
		case constants.BinaryPositionRight:
			parent.RightVolume = models.NewMoneyFromDecimal(parent.RightVolume.Decimal.Add(pv.Decimal))
		}
		parent.UpdatedAt = s.now()
		if err := repo.Update(parent); err != nil {
			return err
		}
		center = parent
	}
	return nil
}

// ApplyVolume 将 PV 沿父链向上累计（独立事务）
func (s *BinaryTreeService) ApplyVolume(userID uint, pv models.Money) error {
	return s.centerRepo.Transaction(func(tx *gorm.DB) error {
		return s.ApplyVolumeTx(tx, userID, pv)
	})
}

// CentersForUser 获取用户的全部业务中心
func (s *BinaryTreeService) CentersForUser(userID uint) ([]models.BusinessCenter, error) {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return []models.BusinessCenter{}, nil
	}
	return s.centerRepo.ListByProfileID(profile.ID)
}

func (s *BinaryTreeService) sponsorCenter(profile *models.MLMProfile) (*models.BusinessCenter, error) {
	sponsorID := profile.SponsorID
	if profile.PlacementSponsorID != nil {
		sponsorID = profile.PlacementSponsorID
	}
	if sponsorID == nil || *sponsorID == 0 {
		return nil, nil
	}
	sponsorProfile, err := s.profileRepo.GetByUserID(*sponsorID)
	if err != nil {
		return nil, err
	}
	if sponsorProfile == nil {
		return nil, nil
	}
	return s.centerRepo.GetFirstByProfileID(sponsorProfile.ID)
}

// openSlot 检查推荐人中心的左右直属槽位（先左后右）。
// 两侧都被占用时返回 nil，不向更深层寻位。
func (s *BinaryTreeService) openSlot(repo repository.BusinessCenterRepository, centerID uint) (*models.BusinessCenter, string, error) {
	center, err := repo.GetByIDForUpdate(centerID)
	if err != nil {
		return nil, "", err
	}
	if center == nil {
		return nil, "", ErrCenterNotFound
	}
	left, err := repo.GetChild(centerID, constants.BinaryPositionLeft)
	if err != nil {
		return nil, "", err
	}
	if left == nil {
		return center, constants.BinaryPositionLeft, nil
	}
	right, err := repo.GetChild(centerID, constants.BinaryPositionRight)
	if err != nil {
		return nil, "", err
	}
	if right == nil {
		return center, constants.BinaryPositionRight, nil
	}
	return nil, "", nil
}
