package models

import "time"

// Transaction 业务交易流水（只追加，不修改）
type Transaction struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                      // 主键
	BuyerID        uint      `gorm:"not null;index" json:"buyer_id"`                            // 买家用户ID
	SellerID       *uint     `gorm:"index" json:"seller_id"`                                    // 卖家用户ID（公司直购为空）
	ProductID      *uint     `gorm:"index" json:"product_id"`                                   // 商品ID
	CashAmount     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"cash_amount"`  // 现金金额
	PVAmount       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"pv_amount"`    // PV 金额
	Type           string    `gorm:"type:varchar(30);not null;index" json:"type"`               // 交易类型
	Status         string    `gorm:"type:varchar(20);not null;default:'completed'" json:"status"` // 交易状态
	AdditionalInfo JSON      `gorm:"type:json" json:"additional_info"`                          // 附加信息
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                   // 创建时间
}

// TableName 指定表名
func (Transaction) TableName() string {
	return "transactions"
}
