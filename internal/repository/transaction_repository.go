package repository

import (
	"errors"

	"github.com/XTeam-Pro/AIMLM/internal/constants"
	"github.com/XTeam-Pro/AIMLM/internal/models"

	"gorm.io/gorm"
)

// TransactionRepository 业务交易流水数据访问接口
type TransactionRepository interface {
	Create(txn *models.Transaction) error
	GetByID(id uint) (*models.Transaction, error)
	GetFirstPurchaseByBuyer(buyerID uint) (*models.Transaction, error)
	List(filter TransactionListFilter) ([]models.Transaction, int64, error)
	WithTx(tx *gorm.DB) TransactionRepository
}

// GormTransactionRepository GORM 实现
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建交易仓库
func NewTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTransactionRepository) WithTx(tx *gorm.DB) TransactionRepository {
	if tx == nil {
		return r
	}
	return &GormTransactionRepository{db: tx}
}

// Create 创建交易流水
func (r *GormTransactionRepository) Create(txn *models.Transaction) error {
	return r.db.Create(txn).Error
}

// GetByID 根据 ID 获取交易流水
func (r *GormTransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	if id == 0 {
		return nil, nil
	}
	var txn models.Transaction
	if err := r.db.First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// GetFirstPurchaseByBuyer 获取买家最早一笔完成的购买交易
func (r *GormTransactionRepository) GetFirstPurchaseByBuyer(buyerID uint) (*models.Transaction, error) {
	if buyerID == 0 {
		return nil, nil
	}
	var txn models.Transaction
	if err := r.db.Where("buyer_id = ? AND status = ?", buyerID, constants.TransactionStatusCompleted).
		Where("type IN ?", []string{
			constants.TransactionTypePurchase,
			constants.TransactionTypeRetailSale,
			constants.TransactionTypeNetworkSale,
		}).
		Order("id asc").First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// List 分页查询交易流水
func (r *GormTransactionRepository) List(filter TransactionListFilter) ([]models.Transaction, int64, error) {
	query := r.db.Model(&models.Transaction{})
	if filter.BuyerID != 0 {
		query = query.Where("buyer_id = ?", filter.BuyerID)
	}
	if filter.SellerID != 0 {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
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

	var txns []models.Transaction
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
