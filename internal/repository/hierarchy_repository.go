package repository

import (
	"github.com/XTeam-Pro/AIMLM/internal/models"

	"gorm.io/gorm"
)

// HierarchyRepository 推荐层级闭包表数据访问接口
type HierarchyRepository interface {
	CreateEdges(edges []models.HierarchyEdge) error
	ListAncestors(descendantID uint) ([]models.HierarchyEdge, error)
	ListDescendants(ancestorID uint) ([]models.HierarchyEdge, error)
	ListDescendantsUpToLevel(ancestorID uint, maxLevel int) ([]models.HierarchyEdge, error)
	ListDirectDescendants(ancestorID uint) ([]models.HierarchyEdge, error)
	CountEdges(ancestorID, descendantID uint) (int64, error)
	DeleteByUser(userID uint) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) HierarchyRepository
}

// GormHierarchyRepository GORM 实现
type GormHierarchyRepository struct {
	db *gorm.DB
}

// NewHierarchyRepository 创建层级仓库
func NewHierarchyRepository(db *gorm.DB) *GormHierarchyRepository {
	return &GormHierarchyRepository{db: db}
}

// Transaction 执行事务
func (r *GormHierarchyRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormHierarchyRepository) WithTx(tx *gorm.DB) HierarchyRepository {
	if tx == nil {
		return r
	}
	return &GormHierarchyRepository{db: tx}
}

// CreateEdges 批量创建层级边
func (r *GormHierarchyRepository) CreateEdges(edges []models.HierarchyEdge) error {
	if len(edges) == 0 {
		return nil
	}
	return r.db.Create(&edges).Error
}

// ListAncestors 获取某用户的全部上级边（按代数升序）
func (r *GormHierarchyRepository) ListAncestors(descendantID uint) ([]models.HierarchyEdge, error) {
	if descendantID == 0 {
		return []models.HierarchyEdge{}, nil
	}
	var edges []models.HierarchyEdge
	if err := r.db.Where("descendant_id = ?", descendantID).
		Order("level asc").Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

// ListDescendants 获取某用户的全部下级边
func (r *GormHierarchyRepository) ListDescendants(ancestorID uint) ([]models.HierarchyEdge, error) {
	if ancestorID == 0 {
		return []models.HierarchyEdge{}, nil
	}
	var edges []models.HierarchyEdge
	if err := r.db.Where("ancestor_id = ?", ancestorID).
		Order("level asc, descendant_id asc").Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

// ListDescendantsUpToLevel 获取不超过指定代数的下级边
func (r *GormHierarchyRepository) ListDescendantsUpToLevel(ancestorID uint, maxLevel int) ([]models.HierarchyEdge, error) {
	if ancestorID == 0 || maxLevel <= 0 {
		return []models.HierarchyEdge{}, nil
	}
	var edges []models.HierarchyEdge
	if err := r.db.Where("ancestor_id = ? AND level <= ?", ancestorID, maxLevel).
		Order("level asc, descendant_id asc").Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

// ListDirectDescendants 获取直推下级边（level = 1）
func (r *GormHierarchyRepository) ListDirectDescendants(ancestorID uint) ([]models.HierarchyEdge, error) {
	if ancestorID == 0 {
		return []models.HierarchyEdge{}, nil
	}
	var edges []models.HierarchyEdge
	if err := r.db.Where("ancestor_id = ? AND level = 1", ancestorID).
		Order("descendant_id asc").Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

// CountEdges 统计指定祖先/后代对的边数
func (r *GormHierarchyRepository) CountEdges(ancestorID, descendantID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.HierarchyEdge{}).
		Where("ancestor_id = ? AND descendant_id = ?", ancestorID, descendantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteByUser 删除某用户参与的全部层级边（作为上级或下级）
func (r *GormHierarchyRepository) DeleteByUser(userID uint) error {
	if userID == 0 {
		return nil
	}
	return r.db.Where("ancestor_id = ? OR descendant_id = ?", userID, userID).
		Delete(&models.HierarchyEdge{}).Error
}
