package repository

import (
	"errors"
	"strings"

	"github.com/XTeam-Pro/AIMLM/internal/constants"
	"github.com/XTeam-Pro/AIMLM/internal/models"

	"gorm.io/gorm"
)

// BonusRepository 奖金记录数据访问接口
type BonusRepository interface {
	Create(bonus *models.Bonus) error
	Update(bonus *models.Bonus) error
	GetByReference(reference string) (*models.Bonus, error)
	GetSponsorBonus(userID, sourceUserID uint) (*models.Bonus, error)
	ListByUserAndPeriod(userID uint, bonusType, period string) ([]models.Bonus, error)
	ListPaidByTypeCreatedBefore(bonusType string, beforeID uint) ([]models.Bonus, error)
	MaxID() (uint, error)
	List(filter BonusListFilter) ([]models.Bonus, int64, error)
	SumByUserAndType(userID uint, bonusType string) (models.Money, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) BonusRepository
}

// GormBonusRepository GORM 实现
type GormBonusRepository struct {
	db *gorm.DB
}

// NewBonusRepository 创建奖金仓库
func NewBonusRepository(db *gorm.DB) *GormBonusRepository {
	return &GormBonusRepository{db: db}
}

// Transaction 执行事务
func (r *GormBonusRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormBonusRepository) WithTx(tx *gorm.DB) BonusRepository {
	if tx == nil {
		return r
	}
	return &GormBonusRepository{db: tx}
}

// Create 创建奖金记录
func (r *GormBonusRepository) Create(bonus *models.Bonus) error {
	return r.db.Create(bonus).Error
}

// Update 更新奖金记录
func (r *GormBonusRepository) Update(bonus *models.Bonus) error {
	return r.db.Save(bonus).Error
}

// GetByReference 按幂等参考号获取奖金记录
func (r *GormBonusRepository) GetByReference(reference string) (*models.Bonus, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var bonus models.Bonus
	if err := r.db.Where("reference = ?", reference).First(&bonus).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bonus, nil
}

// GetSponsorBonus 获取已存在的推荐奖金记录
func (r *GormBonusRepository) GetSponsorBonus(userID, sourceUserID uint) (*models.Bonus, error) {
	if userID == 0 || sourceUserID == 0 {
		return nil, nil
	}
	var bonus models.Bonus
	if err := r.db.Where("user_id = ? AND source_user_id = ? AND bonus_type = ?",
		userID, sourceUserID, constants.BonusTypeSponsor).First(&bonus).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bonus, nil
}

// ListByUserAndPeriod 按用户、类型和周期查询奖金记录
func (r *GormBonusRepository) ListByUserAndPeriod(userID uint, bonusType, period string) ([]models.Bonus, error) {
	if userID == 0 {
		return []models.Bonus{}, nil
	}
	query := r.db.Where("user_id = ?", userID)
	if bonusType != "" {
		query = query.Where("bonus_type = ?", bonusType)
	}
	if period != "" {
		query = query.Where("calculation_period = ?", period)
	}
	var bonuses []models.Bonus
	if err := query.Order("id asc").Find(&bonuses).Error; err != nil {
		return nil, err
	}
	return bonuses, nil
}

// ListPaidByTypeCreatedBefore 获取指定类型、ID 小于界限且已入账的奖金记录
//
// 世代奖金批次只结算本次调用之前已入账的双轨奖金，
// 用 ID 上界保证批次期间新产生的记录不被纳入。
func (r *GormBonusRepository) ListPaidByTypeCreatedBefore(bonusType string, beforeID uint) ([]models.Bonus, error) {
	query := r.db.Where("bonus_type = ? AND is_paid = ?", bonusType, true)
	if beforeID > 0 {
		query = query.Where("id < ?", beforeID)
	}
	var bonuses []models.Bonus
	if err := query.Order("id asc").Find(&bonuses).Error; err != nil {
		return nil, err
	}
	return bonuses, nil
}

// MaxID 获取当前最大奖金记录 ID，作为批次快照上界
func (r *GormBonusRepository) MaxID() (uint, error) {
	var maxID *uint
	if err := r.db.Model(&models.Bonus{}).Select("MAX(id)").Scan(&maxID).Error; err != nil {
		return 0, err
	}
	if maxID == nil {
		return 0, nil
	}
	return *maxID, nil
}

// List 分页查询奖金记录
func (r *GormBonusRepository) List(filter BonusListFilter) ([]models.Bonus, int64, error) {
	query := r.db.Model(&models.Bonus{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.BonusType != "" {
		query = query.Where("bonus_type = ?", filter.BonusType)
	}
	if filter.Period != "" {
		query = query.Where("calculation_period = ?", filter.Period)
	}
	if filter.OnlyPaid {
		query = query.Where("is_paid = ?", true)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var bonuses []models.Bonus
	if err := query.Order("id desc").Find(&bonuses).Error; err != nil {
		return nil, 0, err
	}
	return bonuses, total, nil
}

// SumByUserAndType 统计用户某类型奖金总额
func (r *GormBonusRepository) SumByUserAndType(userID uint, bonusType string) (models.Money, error) {
	var result struct {
		Total models.Money
	}
	query := r.db.Model(&models.Bonus{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND is_paid = ?", userID, true)
	if bonusType != "" {
		query = query.Where("bonus_type = ?", bonusType)
	}
	if err := query.Scan(&result).Error; err != nil {
		return models.ZeroMoney(), err
	}
	return result.Total, nil
}
