package repository

import (
	"errors"

	"github.com/XTeam-Pro/AIMLM/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BusinessCenterRepository 业务中心数据访问接口
type BusinessCenterRepository interface {
	GetByID(id uint) (*models.BusinessCenter, error)
	GetByIDForUpdate(id uint) (*models.BusinessCenter, error)
	ListByProfileID(profileID uint) ([]models.BusinessCenter, error)
	GetFirstByProfileID(profileID uint) (*models.BusinessCenter, error)
	GetChild(parentCenterID uint, position string) (*models.BusinessCenter, error)
	ListChildren(parentCenterID uint) ([]models.BusinessCenter, error)
	CountByProfileID(profileID uint) (int64, error)
	Create(center *models.BusinessCenter) error
	Update(center *models.BusinessCenter) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) BusinessCenterRepository
}

// GormBusinessCenterRepository GORM 实现
type GormBusinessCenterRepository struct {
	db *gorm.DB
}

// NewBusinessCenterRepository 创建业务中心仓库
func NewBusinessCenterRepository(db *gorm.DB) *GormBusinessCenterRepository {
	return &GormBusinessCenterRepository{db: db}
}

// Transaction 执行事务
func (r *GormBusinessCenterRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormBusinessCenterRepository) WithTx(tx *gorm.DB) BusinessCenterRepository {
	if tx == nil {
		return r
	}
	return &GormBusinessCenterRepository{db: tx}
}

// GetByID 根据 ID 获取业务中心
func (r *GormBusinessCenterRepository) GetByID(id uint) (*models.BusinessCenter, error) {
	if id == 0 {
		return nil, nil
	}
	var center models.BusinessCenter
	if err := r.db.First(&center, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &center, nil
}

// GetByIDForUpdate 根据 ID 加锁获取业务中心
func (r *GormBusinessCenterRepository) GetByIDForUpdate(id uint) (*models.BusinessCenter, error) {
	if id == 0 {
		return nil, nil
	}
	var center models.BusinessCenter
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&center, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &center, nil
}

// ListByProfileID 获取某档案的全部业务中心
func (r *GormBusinessCenterRepository) ListByProfileID(profileID uint) ([]models.BusinessCenter, error) {
	if profileID == 0 {
		return []models.BusinessCenter{}, nil
	}
	var centers []models.BusinessCenter
	if err := r.db.Where("profile_id = ?", profileID).
		Order("center_number asc").Find(&centers).Error; err != nil {
		return nil, err
	}
	return centers, nil
}

// GetFirstByProfileID 获取某档案的一号业务中心
func (r *GormBusinessCenterRepository) GetFirstByProfileID(profileID uint) (*models.BusinessCenter, error) {
	if profileID == 0 {
		return nil, nil
	}
	var center models.BusinessCenter
	if err := r.db.Where("profile_id = ?", profileID).
		Order("center_number asc").First(&center).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &center, nil
}

// GetChild 获取某节点指定位置的子节点
func (r *GormBusinessCenterRepository) GetChild(parentCenterID uint, position string) (*models.BusinessCenter, error) {
	if parentCenterID == 0 {
		return nil, nil
	}
	var center models.BusinessCenter
	if err := r.db.Where("parent_center_id = ? AND position = ?", parentCenterID, position).
		First(&center).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &center, nil
}

// ListChildren 获取某节点的全部子节点
func (r *GormBusinessCenterRepository) ListChildren(parentCenterID uint) ([]models.BusinessCenter, error) {
	if parentCenterID == 0 {
		return []models.BusinessCenter{}, nil
	}
	var centers []models.BusinessCenter
	if err := r.db.Where("parent_center_id = ?", parentCenterID).
		Order("position asc").Find(&centers).Error; err != nil {
		return nil, err
	}
	return centers, nil
}

// CountByProfileID 统计某档案的业务中心数量
func (r *GormBusinessCenterRepository) CountByProfileID(profileID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.BusinessCenter{}).
		Where("profile_id = ?", profileID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create 创建业务中心
func (r *GormBusinessCenterRepository) Create(center *models.BusinessCenter) error {
	return r.db.Create(center).Error
}

// Update 更新业务中心
func (r *GormBusinessCenterRepository) Update(center *models.BusinessCenter) error {
	return r.db.Save(center).Error
}
