package repository

import (
	"errors"

	"github.com/XTeam-Pro/AIMLM/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MLMProfileRepository 网络档案数据访问接口
type MLMProfileRepository interface {
	GetByID(id uint) (*models.MLMProfile, error)
	GetByUserID(userID uint) (*models.MLMProfile, error)
	GetByUserIDForUpdate(userID uint) (*models.MLMProfile, error)
	ListByUserIDs(userIDs []uint) ([]models.MLMProfile, error)
	ListBySponsorID(sponsorID uint) ([]models.MLMProfile, error)
	ListByRankWithoutCenter(rank string) ([]models.MLMProfile, error)
	Create(profile *models.MLMProfile) error
	Update(profile *models.MLMProfile) error
	WithTx(tx *gorm.DB) MLMProfileRepository
}

// GormMLMProfileRepository GORM 实现
type GormMLMProfileRepository struct {
	db *gorm.DB
}

// NewMLMProfileRepository 创建网络档案仓库
func NewMLMProfileRepository(db *gorm.DB) *GormMLMProfileRepository {
	return &GormMLMProfileRepository{db: db}
}

// WithTx 绑定事务
func (r *GormMLMProfileRepository) WithTx(tx *gorm.DB) MLMProfileRepository {
	if tx == nil {
		return r
	}
	return &GormMLMProfileRepository{db: tx}
}

// GetByID 根据 ID 获取网络档案
func (r *GormMLMProfileRepository) GetByID(id uint) (*models.MLMProfile, error) {
	if id == 0 {
		return nil, nil
	}
	var profile models.MLMProfile
	if err := r.db.First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByUserID 根据用户ID获取网络档案
func (r *GormMLMProfileRepository) GetByUserID(userID uint) (*models.MLMProfile, error) {
	if userID == 0 {
		return nil, nil
	}
	var profile models.MLMProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByUserIDForUpdate 根据用户ID加锁获取网络档案
func (r *GormMLMProfileRepository) GetByUserIDForUpdate(userID uint) (*models.MLMProfile, error) {
	if userID == 0 {
		return nil, nil
	}
	var profile models.MLMProfile
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// ListByUserIDs 批量获取网络档案
func (r *GormMLMProfileRepository) ListByUserIDs(userIDs []uint) ([]models.MLMProfile, error) {
	if len(userIDs) == 0 {
		return []models.MLMProfile{}, nil
	}
	var profiles []models.MLMProfile
	if err := r.db.Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// ListBySponsorID 获取直推下级档案
func (r *GormMLMProfileRepository) ListBySponsorID(sponsorID uint) ([]models.MLMProfile, error) {
	if sponsorID == 0 {
		return []models.MLMProfile{}, nil
	}
	var profiles []models.MLMProfile
	if err := r.db.Where("sponsor_id = ?", sponsorID).Order("id asc").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// ListByRankWithoutCenter 获取指定等级且尚未拥有业务中心的档案（安置扫描用）
func (r *GormMLMProfileRepository) ListByRankWithoutCenter(rank string) ([]models.MLMProfile, error) {
	var profiles []models.MLMProfile
	err := r.db.
		Where("current_rank = ?", rank).
		Where("NOT EXISTS (SELECT 1 FROM business_centers bc WHERE bc.profile_id = user_mlm_profiles.id AND bc.deleted_at IS NULL)").
		Order("id asc").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// Create 创建网络档案
func (r *GormMLMProfileRepository) Create(profile *models.MLMProfile) error {
	return r.db.Create(profile).Error
}

// Update 更新网络档案
func (r *GormMLMProfileRepository) Update(profile *models.MLMProfile) error {
	return r.db.Save(profile).Error
}
