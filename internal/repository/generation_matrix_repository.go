package repository

import (
	"errors"

	"github.com/XTeam-Pro/AIMLM/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GenerationMatrixRepository 世代奖金矩阵数据访问接口
type GenerationMatrixRepository interface {
	Get(rank string, generation int) (*models.GenerationBonusMatrix, error)
	ListByRank(rank string) ([]models.GenerationBonusMatrix, error)
	ListAll() ([]models.GenerationBonusMatrix, error)
	Upsert(entry *models.GenerationBonusMatrix) error
	WithTx(tx *gorm.DB) GenerationMatrixRepository
}

// GormGenerationMatrixRepository GORM 实现
type GormGenerationMatrixRepository struct {
	db *gorm.DB
}

// NewGenerationMatrixRepository 创建世代奖金矩阵仓库
func NewGenerationMatrixRepository(db *gorm.DB) *GormGenerationMatrixRepository {
	return &GormGenerationMatrixRepository{db: db}
}

// WithTx 绑定事务
func (r *GormGenerationMatrixRepository) WithTx(tx *gorm.DB) GenerationMatrixRepository {
	if tx == nil {
		return r
	}
	return &GormGenerationMatrixRepository{db: tx}
}

// Get 获取指定等级和代数的矩阵项
func (r *GormGenerationMatrixRepository) Get(rank string, generation int) (*models.GenerationBonusMatrix, error) {
	if rank == "" || generation <= 0 {
		return nil, nil
	}
	var entry models.GenerationBonusMatrix
	if err := r.db.Where("rank = ? AND generation = ?", rank, generation).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// ListByRank 获取某等级的全部矩阵项
func (r *GormGenerationMatrixRepository) ListByRank(rank string) ([]models.GenerationBonusMatrix, error) {
	if rank == "" {
		return []models.GenerationBonusMatrix{}, nil
	}
	var entries []models.GenerationBonusMatrix
	if err := r.db.Where("rank = ?", rank).
		Order("generation asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListAll 获取全部矩阵项
func (r *GormGenerationMatrixRepository) ListAll() ([]models.GenerationBonusMatrix, error) {
	var entries []models.GenerationBonusMatrix
	if err := r.db.Order("rank asc, generation asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Upsert 按 (rank, generation) 插入或更新矩阵项
func (r *GormGenerationMatrixRepository) Upsert(entry *models.GenerationBonusMatrix) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "rank"}, {Name: "generation"}},
		DoUpdates: clause.AssignmentColumns([]string{"bonus_percentage", "updated_at"}),
	}).Create(entry).Error
}
