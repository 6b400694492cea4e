package repository

import (
	"errors"
	"time"

	"github.com/XTeam-Pro/AIMLM/internal/models"

	"gorm.io/gorm"
)

// ActivityRepository 周期活跃度数据访问接口
type ActivityRepository interface {
	GetByProfileAndPeriod(profileID uint, periodStart time.Time) (*models.UserActivity, error)
	Create(activity *models.UserActivity) error
	Update(activity *models.UserActivity) error
	ListActiveProfileIDs(profileIDs []uint, threshold models.Money, periodStart time.Time) ([]uint, error)
	WithTx(tx *gorm.DB) ActivityRepository
}

// GormActivityRepository GORM 实现
type GormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository 创建活跃度仓库
func NewActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// WithTx 绑定事务
func (r *GormActivityRepository) WithTx(tx *gorm.DB) ActivityRepository {
	if tx == nil {
		return r
	}
	return &GormActivityRepository{db: tx}
}

// GetByProfileAndPeriod 获取档案在指定周期的活跃度记录
func (r *GormActivityRepository) GetByProfileAndPeriod(profileID uint, periodStart time.Time) (*models.UserActivity, error) {
	if profileID == 0 {
		return nil, nil
	}
	var activity models.UserActivity
	if err := r.db.Where("profile_id = ? AND period_start = ?", profileID, periodStart).
		First(&activity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &activity, nil
}

// Create 创建活跃度记录
func (r *GormActivityRepository) Create(activity *models.UserActivity) error {
	return r.db.Create(activity).Error
}

// Update 更新活跃度记录
func (r *GormActivityRepository) Update(activity *models.UserActivity) error {
	return r.db.Save(activity).Error
}

// ListActiveProfileIDs 返回指定周期内个人业绩达标的档案ID
func (r *GormActivityRepository) ListActiveProfileIDs(profileIDs []uint, threshold models.Money, periodStart time.Time) ([]uint, error) {
	if len(profileIDs) == 0 {
		return []uint{}, nil
	}
	var ids []uint
	if err := r.db.Model(&models.UserActivity{}).
		Where("profile_id IN ? AND period_start = ? AND personal_volume >= ?", profileIDs, periodStart, threshold).
		Pluck("profile_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
