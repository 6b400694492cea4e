package repository

import (
	"github.com/XTeam-Pro/AIMLM/internal/models"

	"gorm.io/gorm"
)

// RankHistoryRepository 等级晋升历史数据访问接口
type RankHistoryRepository interface {
	Create(history *models.UserRankHistory) error
	List(filter RankHistoryListFilter) ([]models.UserRankHistory, int64, error)
	WithTx(tx *gorm.DB) RankHistoryRepository
}

// GormRankHistoryRepository GORM 实现
type GormRankHistoryRepository struct {
	db *gorm.DB
}

// NewRankHistoryRepository 创建晋升历史仓库
func NewRankHistoryRepository(db *gorm.DB) *GormRankHistoryRepository {
	return &GormRankHistoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormRankHistoryRepository) WithTx(tx *gorm.DB) RankHistoryRepository {
	if tx == nil {
		return r
	}
	return &GormRankHistoryRepository{db: tx}
}

// Create 创建晋升历史
func (r *GormRankHistoryRepository) Create(history *models.UserRankHistory) error {
	return r.db.Create(history).Error
}

// List 分页查询晋升历史
func (r *GormRankHistoryRepository) List(filter RankHistoryListFilter) ([]models.UserRankHistory, int64, error) {
	query := r.db.Model(&models.UserRankHistory{})
	if filter.ProfileID != 0 {
		query = query.Where("profile_id = ?", filter.ProfileID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var histories []models.UserRankHistory
	if err := query.Order("id desc").Find(&histories).Error; err != nil {
		return nil, 0, err
	}
	return histories, total, nil
}
